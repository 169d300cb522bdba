package common

// AccessTokenHeaderName is the gRPC metadata key carrying the admin access
// token on inbound requests.
const AccessTokenHeaderName = "access_token"

// AppName is used as the default sender display name and metrics namespace.
const AppName = "kitlibrarian"
