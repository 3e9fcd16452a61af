package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReceiptIssuerCounterPath(t *testing.T) {
	issuer := NewReceiptIssuer(&seqCounter{}, "RCP")
	ctx := context.Background()

	assert.Equal(t, "RCP-00001", issuer.Next(ctx))
	assert.Equal(t, "RCP-00002", issuer.Next(ctx))
}

func TestReceiptIssuerFallback(t *testing.T) {
	pattern := regexp.MustCompile(`^RCP-\d{4}$`)

	// counter down
	issuer := NewReceiptIssuer(&seqCounter{err: errors.New("redis down")}, "RCP")
	assert.Regexp(t, pattern, issuer.Next(context.Background()))

	// no counter wired at all
	issuer = NewReceiptIssuer(nil, "RCP")
	assert.Regexp(t, pattern, issuer.Next(context.Background()))
}
