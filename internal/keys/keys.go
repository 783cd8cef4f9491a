package keys

import (
	"strings"

	"github.com/google/uuid"
)

var (
	usernameSpace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("titan-arena/username"))
	emailSpace    = uuid.NewSHA1(uuid.NameSpaceOID, []byte("titan-arena/email"))
)

// CanonicalUsername trims the name, collapses inner whitespace to single
// spaces and lower-cases it. Two logins that differ only in case or spacing
// map to the same player.
func CanonicalUsername(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// PlayerIDForUsername derives a stable player id from a username.
func PlayerIDForUsername(name string) string {
	return uuid.NewSHA1(usernameSpace, []byte(CanonicalUsername(name))).String()
}

// PlayerIDForEmail derives a stable player id from a verified email.
func PlayerIDForEmail(email string) string {
	return uuid.NewSHA1(emailSpace, []byte(strings.ToLower(strings.TrimSpace(email)))).String()
}
