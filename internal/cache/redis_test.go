package cache

import (
	"context"
	"testing"
	"time"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/orders"
	"github.com/stretchr/testify/assert"
)

var _ orders.Cache = NewRedisCache("localhost:6379", "test")

func TestGenerateKey(t *testing.T) {
	c := NewRedisCache("localhost:6379", "stellar-burgers")
	defer c.Close()

	assert.Equal(t, "stellar-burgers:order:1234", c.GenerateKey("order", "1234"))
}

func TestUnreachableServer(t *testing.T) {
	// Port 1 is reserved and never has a redis listening
	c := NewRedisCache("127.0.0.1:1", "test")
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.Error(t, c.Ping(ctx))
	_, err := c.Get(ctx, "missing")
	assert.Error(t, err, "transport failures are not reported as misses")
}
