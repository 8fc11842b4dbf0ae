package utils // package utils provides helper functions for token handling, hashing and text cleanup

import (
    "errors"  // sentinel errors for token verification failures
    "strconv" // parsing of numeric subject claims encoded as strings
    "time"    // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and verifying signed tokens
)

// TokenKind distinguishes the two token flavours the application issues.
// Access tokens authenticate ordinary requests and are short-lived; refresh
// tokens are long-lived and are only ever exchanged for a new access token.
// Each kind is signed with its own secret AND carries an explicit kind claim,
// so a refresh token can never verify as an access token even if the two
// secrets were misconfigured to the same value.
type TokenKind string

const (
    TokenKindAccess  TokenKind = "access"  // short-lived bearer credential
    TokenKindRefresh TokenKind = "refresh" // long-lived credential for minting access tokens
)

// ErrInvalidToken is returned by VerifyToken for any verification failure:
// bad signature, malformed token, wrong kind, or expiry.  Callers translate
// it into a 401 without inspecting the underlying cause.
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity holds the claims extracted from a verified token.  It is what the
// rest of the application knows about the caller.
type Identity struct {
    UserID uint64 // subject claim (users.id)
    Email  string // email claim
    Role   string // role claim ("user", "admin" or "superadmin")
}

// SignedToken pairs a serialized JWT with its expiration time so handlers can
// report the expiry to clients and derive cookie max-ages from it.
type SignedToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewAccessToken signs a short-lived HS256 access token for the given user.
// TTL is expressed in minutes to match the configuration contract.
func NewAccessToken(secret string, userID uint64, email, role string, ttlMin int) (SignedToken, error) {
    return issueToken(TokenKindAccess, secret, userID, email, role, time.Duration(ttlMin)*time.Minute)
}

// NewRefreshToken signs a long-lived HS256 refresh token for the given user.
// TTL is expressed in days.  The resulting string is also persisted verbatim
// on the user record so superseded sessions can be rejected.
func NewRefreshToken(secret string, userID uint64, email, role string, ttlDays int) (SignedToken, error) {
    return issueToken(TokenKindRefresh, secret, userID, email, role, time.Duration(ttlDays)*24*time.Hour)
}

// issueToken builds and signs an HS256 JWT carrying the identity claims plus
// the kind discriminator, issued-at and expiry.
func issueToken(kind TokenKind, secret string, userID uint64, email, role string, ttl time.Duration) (SignedToken, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := jwt.MapClaims{
        "sub":   userID,
        "email": email,
        "role":  role,
        "kind":  string(kind),
        "iat":   now.Unix(),
        "exp":   exp.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return SignedToken{}, err
    }
    return SignedToken{Token: signed, Exp: exp}, nil
}

// VerifyToken parses and validates a token of the expected kind.  It returns
// the embedded Identity on success and ErrInvalidToken on any failure: the
// signature does not match, the token is malformed, the kind claim differs
// from the expected kind, or the current time is at or past the expiry.  It
// never panics into caller logic.
func VerifyToken(kind TokenKind, secret, raw string) (Identity, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Only HMAC-signed tokens are acceptable; reject other algorithms.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return Identity{}, ErrInvalidToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return Identity{}, ErrInvalidToken
    }
    if k, _ := claims["kind"].(string); k != string(kind) {
        return Identity{}, ErrInvalidToken
    }

    var id Identity
    // JWT numeric values decode as float64; tolerate string-encoded subjects
    // produced by other token libraries.
    switch sub := claims["sub"].(type) {
    case float64:
        id.UserID = uint64(sub)
    case string:
        n, err := strconv.ParseUint(sub, 10, 64)
        if err != nil {
            return Identity{}, ErrInvalidToken
        }
        id.UserID = n
    default:
        return Identity{}, ErrInvalidToken
    }
    id.Email, _ = claims["email"].(string)
    id.Role, _ = claims["role"].(string)
    if id.UserID == 0 || id.Role == "" {
        return Identity{}, ErrInvalidToken
    }
    return id, nil
}
