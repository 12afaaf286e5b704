// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package uuid_test

import (
	"testing"

	googleuuid "github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/motofleet/pkg/uuid"
)

/*
TestNew generates version 7 identifiers in creation order.
*/
func TestNew(t *testing.T) {
	first := uuid.New()
	second := uuid.New()

	parsed, err := googleuuid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, googleuuid.Version(7), parsed.Version())
	assert.NotEqual(t, first, second)
	assert.True(t, uuid.Valid(first))
}

/*
TestValid accepts only canonical hyphenated UUIDs.
*/
func TestValid(t *testing.T) {
	assert.True(t, uuid.Valid("0190b8e4-0000-7000-8000-000000000001"))
	assert.False(t, uuid.Valid(""))
	assert.False(t, uuid.Valid("not-a-uuid"))
	assert.False(t, uuid.Valid("urn:uuid:0190b8e4-0000-7000-8000-000000000001"))
	assert.False(t, uuid.Valid("0190b8e4000070008000000000000001"))
}
