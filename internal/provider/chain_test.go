package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSupplier struct {
	res   SupplyResult
	err   error
	calls int
}

func (f *fakeSupplier) Supply(_ context.Context, _ Input) (SupplyResult, error) {
	f.calls++
	return f.res, f.err
}

func TestChainPrimarySucceeds(t *testing.T) {
	primary := &fakeSupplier{res: SupplyResult{Text: "some receipt text", Method: "vision"}}
	secondary := &fakeSupplier{res: SupplyResult{Text: "ocr text", Method: "ocr"}}
	c := NewChain(primary, secondary, nil)

	res, err := c.Supply(context.Background(), Input{})
	require.NoError(t, err)
	assert.Equal(t, "vision", res.Method)
	assert.Zero(t, secondary.calls)
}

func TestChainFallsBackOnError(t *testing.T) {
	primary := &fakeSupplier{err: errors.New("quota exceeded")}
	secondary := &fakeSupplier{res: SupplyResult{Text: "ocr text", Method: "ocr"}}
	c := NewChain(primary, secondary, nil)

	res, err := c.Supply(context.Background(), Input{})
	require.NoError(t, err)
	assert.Equal(t, "ocr", res.Method)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "quota exceeded")
}

func TestChainFallsBackOnEmptyText(t *testing.T) {
	primary := &fakeSupplier{res: SupplyResult{Text: "   \n "}}
	secondary := &fakeSupplier{res: SupplyResult{Text: "ocr text", Method: "ocr"}}
	c := NewChain(primary, secondary, nil)

	res, err := c.Supply(context.Background(), Input{})
	require.NoError(t, err)
	assert.Equal(t, "ocr", res.Method)
	assert.Empty(t, res.Warnings)
}

func TestChainBothFail(t *testing.T) {
	primary := &fakeSupplier{err: errors.New("primary down")}
	secondary := &fakeSupplier{err: errors.New("secondary down")}
	c := NewChain(primary, secondary, nil)

	_, err := c.Supply(context.Background(), Input{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "primary down")
	assert.Contains(t, err.Error(), "secondary down")
}

func TestChainNoSuppliers(t *testing.T) {
	c := NewChain(nil, nil, nil)
	_, err := c.Supply(context.Background(), Input{})
	assert.Error(t, err)
}

func TestChainPrimaryOnly(t *testing.T) {
	primary := &fakeSupplier{err: errors.New("down")}
	c := NewChain(primary, nil, nil)

	_, err := c.Supply(context.Background(), Input{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "down")
}
