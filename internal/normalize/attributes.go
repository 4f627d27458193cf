package normalize

import (
	"fmt"
	"regexp"
	"time"

	"github.com/remintlab/collection-harvester/internal/domain"
)

const (
	typeTraitName     = "Type"
	typeClassic       = "Classic"
	typeNamed         = "Named"
	mintDateTraitName = "Original Mint Date"

	// mintDateLayout renders timestamps like "January 5, 2022"
	mintDateLayout = "January 2, 2006"
)

// classicNamePattern matches plain numbered names like "Moon Bird #421".
// Anything else counts as a custom name.
var classicNamePattern = regexp.MustCompile(`^[A-Za-z0-9 ]+#[0-9]+$`)

// DeriveOptions selects which derived attributes to compute
type DeriveOptions struct {
	ClassifyNames  bool
	InjectMintDate bool
}

// DeriveAttributes computes the extra descriptive attributes of a record
// from its name and provenance timestamp. A missing timestamp yields no
// mint-date attribute and never fails the record.
func DeriveAttributes(name string, provenance *time.Time, opts DeriveOptions) []domain.Trait {
	var attributes []domain.Trait

	if opts.ClassifyNames {
		value := typeNamed
		if classicNamePattern.MatchString(name) {
			value = typeClassic
		}
		attributes = append(attributes, domain.Trait{TraitType: typeTraitName, Value: value})
	}

	if opts.InjectMintDate && provenance != nil {
		attributes = append(attributes, domain.Trait{
			TraitType: mintDateTraitName,
			Value:     provenance.Format(mintDateLayout),
		})
	}

	return attributes
}

// MintSentence returns the provenance sentence appended to a record's
// description, or the empty string when no timestamp is known.
func MintSentence(provenance *time.Time) string {
	if provenance == nil {
		return ""
	}
	return fmt.Sprintf("This token was originally minted on %s.", provenance.Format(mintDateLayout))
}
