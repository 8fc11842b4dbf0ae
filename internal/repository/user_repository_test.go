package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapInsertErr(t *testing.T) {
	slot := errors.New(`Error 1062 (23000): Duplicate entry '1' for key 'users.uq_users_superadmin_slot'`)
	assert.ErrorIs(t, mapInsertErr(slot), ErrSuperadminExists)

	email := errors.New(`Error 1062 (23000): Duplicate entry 'a@b.c' for key 'users.uq_users_email'`)
	assert.ErrorIs(t, mapInsertErr(email), ErrEmailExists)

	other := errors.New("Error 1213 (40001): Deadlock found")
	assert.Equal(t, other, mapInsertErr(other))
}

func TestLimitOffset(t *testing.T) {
	limit, offset := limitOffset(0, 0)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, offset)

	limit, offset = limitOffset(3, 10)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, offset)

	limit, _ = limitOffset(1, 500)
	assert.Equal(t, 100, limit)

	_, offset = limitOffset(-5, 10)
	assert.Equal(t, 0, offset)
}
