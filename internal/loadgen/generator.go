package loadgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

var (
	firstNames = []string{"Amara", "Bruno", "Chiara", "Dmitri", "Elif", "Farah", "Goran", "Hana", "Ines", "Jonas"}
	lastNames  = []string{"Okafor", "Silva", "Rossi", "Volkov", "Yilmaz", "Haddad", "Novak", "Sato", "Garcia", "Berg"}
	pitches    = []string{
		"Knows every back street.",
		"Speaks four languages.",
		"Former museum docent.",
		"Runs food tours on weekends.",
		"Certified mountain guide.",
	}
)

func pick(options []string) string {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(options))))
	if err != nil {
		return options[0]
	}
	return options[n.Int64()]
}

// NewRunTag returns a short token that is embedded in every generated name
// so one run's records can be isolated with ?search=.
func NewRunTag() string {
	return "run" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Generate builds n submissions whose usernames all contain tag.
func Generate(n int, tag string) []Submission {
	out := make([]Submission, n)
	for i := range out {
		uid := uuid.NewString()
		first, last := pick(firstNames), pick(lastNames)
		out[i] = Submission{
			UID:       uid,
			Username:  fmt.Sprintf("%s %s %s-%d", first, last, tag, i),
			Email:     fmt.Sprintf("%s.%s.%d@%s.example.com", strings.ToLower(first), strings.ToLower(last), i, tag),
			AuthState: map[string]any{"provider": "loadgen"},
			RegistrationData: RegistrationData{
				Description: pick(pitches),
				UploadedURL: "https://images.example.com/" + uid + ".png",
			},
		}
	}
	return out
}
