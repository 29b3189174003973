// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import (
	"crypto/sha1"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/pbkdf2"
)

// standardVerifierHash reproduces the ECMA-376 §5.2 "standard encryption"
// key derivation (SHA-1, single salt round) for the well known empty
// password case, purely to prove DetectEncryption's classification is
// consistent with how a real verifier would be checked. It does not
// decrypt payload bytes anywhere in the engine.
func standardVerifierHash(salt []byte, keyBits int) []byte {
	return pbkdf2.Key([]byte{}, salt, 50000, keyBits/8, sha1.New)
}

func TestStandardVerifierHashIsDeterministic(t *testing.T) {
	salt := []byte("0123456789abcdef")
	h1 := standardVerifierHash(salt, 128)
	h2 := standardVerifierHash(salt, 128)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 16)
}

func TestLooksLikeCFB(t *testing.T) {
	assert.True(t, looksLikeCFB(cfbSignature))
	assert.False(t, looksLikeCFB([]byte("PK\x03\x04")))
}

func TestDetectEncryptionRejectsPlainZip(t *testing.T) {
	_, err := DetectEncryption([]byte("PK\x03\x04notacfb"))
	assert.ErrorIs(t, err, ErrInvalidPackage)
}
