package utils

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptValue(t *testing.T) {
	t.Run("Successfully encrypt value", func(t *testing.T) {
		// Arrange
		value := `{"action":"data_export","export_id":"abc-123"}`
		encryptionKey := bytes.Repeat([]byte("a"), 32) // 32-byte encryption key

		// Act
		encryptedValue, err := EncryptValue(value, encryptionKey)

		// Assert
		assert.NoError(t, err)
		assert.NotEmpty(t, encryptedValue)

		// Check if the result is a valid base64 string
		_, err = base64.StdEncoding.DecodeString(encryptedValue)
		assert.NoError(t, err)

		// Encrypted value should be different from the original
		assert.NotEqual(t, value, encryptedValue)
	})

	t.Run("Different values produce different encryptions", func(t *testing.T) {
		// Arrange
		value1 := "audit-detail-1"
		value2 := "audit-detail-2"
		encryptionKey := bytes.Repeat([]byte("a"), 32)

		// Act
		encryptedValue1, err1 := EncryptValue(value1, encryptionKey)
		encryptedValue2, err2 := EncryptValue(value2, encryptionKey)

		// Assert
		assert.NoError(t, err1)
		assert.NoError(t, err2)
		assert.NotEqual(t, encryptedValue1, encryptedValue2, "Different plaintext values should produce different encrypted values")
	})

	t.Run("Different encryption keys produce different encryptions", func(t *testing.T) {
		// Arrange
		value := "audit-detail-1234567890"
		encryptionKey1 := bytes.Repeat([]byte("a"), 32)
		encryptionKey2 := bytes.Repeat([]byte("b"), 32)

		// Act
		encryptedValue1, err1 := EncryptValue(value, encryptionKey1)
		encryptedValue2, err2 := EncryptValue(value, encryptionKey2)

		// Assert
		assert.NoError(t, err1)
		assert.NoError(t, err2)
		assert.NotEqual(t, encryptedValue1, encryptedValue2, "Different encryption keys should produce different encrypted values")
	})

	t.Run("Empty value can be encrypted", func(t *testing.T) {
		// Arrange
		value := ""
		encryptionKey := bytes.Repeat([]byte("a"), 32)

		// Act
		encryptedValue, err := EncryptValue(value, encryptionKey)

		// Assert
		assert.NoError(t, err)
		assert.NotEmpty(t, encryptedValue)
	})

	t.Run("Very long value can be encrypted", func(t *testing.T) {
		// Arrange
		value := strings.Repeat("a", 10000) // 10KB string
		encryptionKey := bytes.Repeat([]byte("a"), 32)

		// Act
		encryptedValue, err := EncryptValue(value, encryptionKey)

		// Assert
		assert.NoError(t, err)
		assert.NotEmpty(t, encryptedValue)
	})

	t.Run("Error with short encryption key", func(t *testing.T) {
		// Arrange
		value := "audit-detail"
		encryptionKey := bytes.Repeat([]byte("a"), 16)

		// Act
		encryptedValue, err := EncryptValue(value, encryptionKey)

		// Assert
		assert.Error(t, err)
		assert.Empty(t, encryptedValue)
		assert.Contains(t, err.Error(), "at least 32 bytes")
	})
}

func TestDecryptValue(t *testing.T) {
	t.Run("Successfully decrypt value", func(t *testing.T) {
		// Arrange
		originalValue := "audit-detail-1234567890"
		encryptionKey := bytes.Repeat([]byte("a"), 32)

		encryptedValue, err := EncryptValue(originalValue, encryptionKey)
		require.NoError(t, err)

		// Act
		decryptedValue, err := DecryptValue(encryptedValue, encryptionKey)

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, originalValue, decryptedValue)
	})

	t.Run("Error with invalid base64", func(t *testing.T) {
		// Arrange
		invalidBase64 := "not-valid-base64!"
		encryptionKey := bytes.Repeat([]byte("a"), 32)

		// Act
		decryptedValue, err := DecryptValue(invalidBase64, encryptionKey)

		// Assert
		assert.Error(t, err)
		assert.Empty(t, decryptedValue)
		assert.Contains(t, err.Error(), "failed to decode base64")
	})

	t.Run("Error with wrong encryption key", func(t *testing.T) {
		// Arrange
		originalValue := "audit-detail-1234567890"
		encryptionKey1 := bytes.Repeat([]byte("a"), 32)
		encryptionKey2 := bytes.Repeat([]byte("b"), 32)

		encryptedValue, err := EncryptValue(originalValue, encryptionKey1)
		require.NoError(t, err)

		// Act
		decryptedValue, err := DecryptValue(encryptedValue, encryptionKey2)

		// Assert
		assert.Error(t, err)
		assert.Empty(t, decryptedValue)
		assert.Contains(t, err.Error(), "failed to decrypt")
	})

	t.Run("Error with ciphertext too short", func(t *testing.T) {
		// Arrange
		shortCiphertext := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("x"), 8))
		encryptionKey := bytes.Repeat([]byte("a"), 32)

		// Act
		decryptedValue, err := DecryptValue(shortCiphertext, encryptionKey)

		// Assert
		assert.Error(t, err)
		assert.Empty(t, decryptedValue)
		assert.Contains(t, err.Error(), "ciphertext too short")
	})

	t.Run("Successfully decrypt empty value", func(t *testing.T) {
		// Arrange
		originalValue := ""
		encryptionKey := bytes.Repeat([]byte("a"), 32)

		encryptedValue, err := EncryptValue(originalValue, encryptionKey)
		require.NoError(t, err)

		// Act
		decryptedValue, err := DecryptValue(encryptedValue, encryptionKey)

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, originalValue, decryptedValue)
	})

	t.Run("Successfully decrypt very long value", func(t *testing.T) {
		// Arrange
		originalValue := strings.Repeat("a", 10000) // 10KB string
		encryptionKey := bytes.Repeat([]byte("a"), 32)

		encryptedValue, err := EncryptValue(originalValue, encryptionKey)
		require.NoError(t, err)

		// Act
		decryptedValue, err := DecryptValue(encryptedValue, encryptionKey)

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, originalValue, decryptedValue)
	})
}

func TestEncryptionRoundTrip(t *testing.T) {
	t.Run("Encrypt and decrypt special characters", func(t *testing.T) {
		// Arrange
		originalValue := "!@#$%^&*()_+{}[]|:;'<>,.?/~`"
		encryptionKey := bytes.Repeat([]byte("a"), 32)

		// Act
		encryptedValue, err := EncryptValue(originalValue, encryptionKey)
		require.NoError(t, err)

		decryptedValue, err := DecryptValue(encryptedValue, encryptionKey)

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, originalValue, decryptedValue)
	})

	t.Run("Encrypt and decrypt Unicode characters", func(t *testing.T) {
		// Arrange
		originalValue := "こんにちは世界 Привет мир 你好世界 مرحبا بالعالم"
		encryptionKey := bytes.Repeat([]byte("a"), 32)

		// Act
		encryptedValue, err := EncryptValue(originalValue, encryptionKey)
		require.NoError(t, err)

		decryptedValue, err := DecryptValue(encryptedValue, encryptionKey)

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, originalValue, decryptedValue)
	})
}
