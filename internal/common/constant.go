// Package common contains shared constants and sentinel errors used across
// gophnotes components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// PrivateKeyPrefix is the root under which every blob key is scoped to its
// principal: private/<principal>/<key>.
const PrivateKeyPrefix = "private"
