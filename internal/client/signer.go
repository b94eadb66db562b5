package client

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// The gateway's keyed-hash scheme: MD5 over the input, hex-encode, then
// SHA1 over the bytes of that hex string. Required by the gateway's
// integration contract, not a cryptographic choice of ours.
func md5ThenSha1(s string) string {
	md5Sum := md5.Sum([]byte(s))
	md5Hex := hex.EncodeToString(md5Sum[:])
	sha1Sum := sha1.Sum([]byte(md5Hex))
	return hex.EncodeToString(sha1Sum[:])
}

// SaleSignature signs an outbound SALE request. Fields are concatenated
// without separators and the whole string is uppercased before hashing.
// Amount must already be formatted with exactly two decimals.
func SaleSignature(orderID, formattedAmount, currency, description, merchantPass string) string {
	raw := orderID + formattedAmount + currency + description + merchantPass
	return md5ThenSha1(strings.ToUpper(raw))
}

// CallbackHash computes the expected hash of an inbound callback. Unlike
// the sale signature, each field is trimmed and uppercased individually
// and fields are joined with "." — that is the callback endpoint's
// contract and must not be unified with SaleSignature.
func CallbackHash(orderID, amount, currency, merchantPass string) string {
	raw := norm(orderID) + "." + norm(amount) + "." + norm(currency) + "." + norm(merchantPass)
	return md5ThenSha1(strings.ToUpper(raw))
}

// VerifyCallbackHash reports whether the gateway-supplied hash matches the
// locally computed one. A mismatch is a boolean outcome, not an error.
func VerifyCallbackHash(orderID, amount, currency, merchantPass, suppliedHash string) bool {
	return CallbackHash(orderID, amount, currency, merchantPass) == suppliedHash
}

// StatusHash signs the status-query endpoint: a single-field variant over
// the gateway transaction id and the merchant password.
func StatusHash(transID, merchantPass string) string {
	return md5ThenSha1(strings.ToUpper(transID + merchantPass))
}

func norm(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
