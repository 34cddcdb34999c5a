package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

var _ fiber.Storage = (*LimiterStorage)(nil)

func TestLimiterStorage_Get(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewLimiterStorage(db, "l2p:")

	t.Run("Hit", func(t *testing.T) {
		mock.ExpectGet("l2p:127.0.0.1").SetVal("counter")
		b, err := s.Get("127.0.0.1")
		assert.NoError(t, err)
		assert.Equal(t, []byte("counter"), b)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Miss", func(t *testing.T) {
		mock.ExpectGet("l2p:127.0.0.1").RedisNil()
		b, err := s.Get("127.0.0.1")
		assert.NoError(t, err)
		assert.Nil(t, b)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RedisError", func(t *testing.T) {
		redisErr := errors.New("connection refused")
		mock.ExpectGet("l2p:127.0.0.1").SetErr(redisErr)
		_, err := s.Get("127.0.0.1")
		assert.ErrorIs(t, err, redisErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("EmptyKey", func(t *testing.T) {
		b, err := s.Get("")
		assert.NoError(t, err)
		assert.Nil(t, b)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLimiterStorage_Set(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewLimiterStorage(db, "l2p:")

	t.Run("Success", func(t *testing.T) {
		mock.ExpectSet("l2p:k", []byte("v"), 30*time.Second).SetVal("OK")
		assert.NoError(t, s.Set("k", []byte("v"), 30*time.Second))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("EmptyValueIsNoop", func(t *testing.T) {
		assert.NoError(t, s.Set("k", nil, time.Second))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLimiterStorage_Delete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewLimiterStorage(db, "l2p:")

	mock.ExpectDel("l2p:k").SetVal(1)
	assert.NoError(t, s.Delete("k"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLimiterStorage_Reset(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewLimiterStorage(db, "l2p:")

	mock.ExpectScan(0, "l2p:*", 100).SetVal([]string{"l2p:a", "l2p:b"}, 7)
	mock.ExpectDel("l2p:a", "l2p:b").SetVal(2)
	mock.ExpectScan(7, "l2p:*", 100).SetVal([]string{}, 0)

	assert.NoError(t, s.Reset())
	assert.NoError(t, mock.ExpectationsWereMet())
}
