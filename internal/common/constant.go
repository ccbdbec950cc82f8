package common

import "time"

// DefaultRole is assigned to every user created through registration.
const DefaultRole = "USER"

// DefaultIssuer is the "iss" claim stamped on access tokens.
const DefaultIssuer = "league-auth-service"

// DefaultRefreshTokenValidity is the fixed refresh token lifetime (7 days).
const DefaultRefreshTokenValidity = 7 * 24 * time.Hour

// AuthorizationHeaderName carries "Bearer <access token>" on inbound requests.
const AuthorizationHeaderName = "Authorization"
