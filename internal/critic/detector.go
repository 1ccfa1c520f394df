package critic

import (
	"strings"

	"resumecritic/internal/errors"
)

// minCueVotes is the fewest distinct cue matches needed to name an industry.
const minCueVotes = 2

// Detector picks the industry a resume most likely belongs to.
type Detector struct {
	registry *Registry
}

// NewDetector returns a detector voting over reg's banks.
func NewDetector(reg *Registry) *Detector {
	return &Detector{registry: reg}
}

// Detect returns forced when it names a registered industry and otherwise
// votes on cue phrases found in the resume and job description together.
func (d *Detector) Detect(text, jobDescription, forced string) (string, error) {
	forced = strings.ToLower(strings.TrimSpace(forced))
	if forced != "" {
		if !d.registry.Has(forced) {
			return "", invalidIndustry(forced, d.registry)
		}
		return forced, nil
	}

	haystack := strings.ToLower(text + "\n" + jobDescription)
	best, bestVotes := Unknown, 0
	for _, bank := range d.registry.banks {
		votes := 0
		for _, cue := range bank.cues {
			if cue.MatchString(haystack) {
				votes++
			}
		}
		if votes > bestVotes {
			best, bestVotes = bank.Name, votes
		}
	}

	if bestVotes < minCueVotes {
		return Unknown, nil
	}
	return best, nil
}

func invalidIndustry(industry string, reg *Registry) *errors.AppError {
	return errors.NewValidationError(errors.ErrCodeInvalidIndustry,
		"industry is not registered: "+industry, nil).
		WithContext("industry", industry).
		WithContext("supported", strings.Join(reg.Industries(), ","))
}
