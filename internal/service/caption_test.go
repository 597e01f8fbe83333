package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptionService_Deterministic(t *testing.T) {
	ctx := context.Background()
	a := NewCaptionService(NewSeededRandom(7), 0)
	b := NewCaptionService(NewSeededRandom(7), 0)

	for i := 0; i < 5; i++ {
		ca, err := a.Suggest(ctx, "cat")
		require.NoError(t, err)
		cb, err := b.Suggest(ctx, "dog")
		require.NoError(t, err)
		assert.Equal(t, ca, cb)
		assert.Contains(t, captions, ca)
	}
}

func TestCaptionService_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewCaptionService(NewSeededRandom(1), time.Hour)
	_, err := svc.Suggest(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}
