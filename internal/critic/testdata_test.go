package critic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const retailResume = `Jordan Lee
jordan.lee@example.com | (555) 123-4567 | Springfield, IL

Summary
Dependable cashier with four years of customer service experience in busy retail stores.
Known for accurate cash handling, calm conflict resolution and a steady pace during holiday rushes.

Experience
Cashier, Corner Market, Springfield (2019 - 2023)
- Operated the POS register for 200+ customers per shift with a 99% balancing rate
- Trained 6 new hires on opening and closing procedures and loss prevention checks
- Resolved billing questions and returns while keeping lines moving
- Restocked shelves and updated price tags during slow periods
- Counted the drawer at shift change and reported discrepancies to the manager

Sales Associate, Main Street Books (2017 - 2019)
- Helped shoppers find titles and placed special orders through the store catalog
- Built seasonal displays that lifted gift card sales by 15%

Skills
Cash handling, merchandising, inventory counts, scheduling, teamwork, reliability

Education
High School Diploma, Springfield High School, 2017
`

// unprofessionalRetailResume is retailResume with a careless email and tone.
var unprofessionalRetailResume = strings.Replace(retailResume,
	"jordan.lee@example.com",
	"coolguy420@gmail.com", 1) +
	"\nGot fired from my last gig lol, the owner was a terrible manager.\n"

const techResume = `Sam Rivera
sam.rivera@example.com
Software Engineer

Experience
Backend Engineer, Acme (2020 - 2024)
- Built Go services on PostgreSQL handling 3 million requests per day
- Cut p99 latency by 40%
- Set up Docker based CI/CD pipelines

Skills
Go, Python, PostgreSQL, Docker, Git

Education
B.S. Computer Science, 2019
`

const techJobDescription = "We need a backend engineer with Go, Kubernetes, Terraform and PostgreSQL experience."

func newTestCritic(t *testing.T) *Critic {
	t.Helper()
	reg, err := DefaultRegistry()
	require.NoError(t, err)
	return New(reg)
}
