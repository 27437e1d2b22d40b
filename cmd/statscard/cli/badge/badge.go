// Package badge paints computed statistics into SVG stat-card
// templates. Templates carry elements with well-known ids (age_data,
// commit_data, loc_add, ...) plus companion "<id>_dots" elements holding
// the dotted leader that right-aligns each value.
package badge

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"
	"github.com/dustin/go-humanize"
)

// Stats are the values painted into a card.
type Stats struct {
	Age          string
	Commits      int
	Stars        int
	Repos        int
	ContribRepos int
	Followers    int
	Additions    int
	Deletions    int
	Net          int
}

// ageLineWidth is the column the age line's dotted leader pads to.
const ageLineWidth = 49

// UpdateCard rewrites the SVG template at path in place with the given
// statistics. Template elements that are missing are skipped, so a
// trimmed-down card keeps working.
func UpdateCard(path string, stats Stats) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return fmt.Errorf("parsing template %s: %w", path, err)
	}
	root := doc.Root()
	if root == nil {
		return fmt.Errorf("template %s has no root element", path)
	}

	setText(root, "age_data", stats.Age)
	setText(root, "age_data_dots", ageDots(ageLineWidth-utf8.RuneCountInString(stats.Age)))

	justify(root, "commit_data", comma(stats.Commits), 22)
	justify(root, "star_data", comma(stats.Stars), 14)
	justify(root, "repo_data", comma(stats.Repos), 7)
	justify(root, "contrib_data", comma(stats.ContribRepos), 0)
	justify(root, "follower_data", comma(stats.Followers), 10)
	justify(root, "loc_data", comma(stats.Net), 9)
	justify(root, "loc_add", comma(stats.Additions), 0)
	justify(root, "loc_del", comma(stats.Deletions), 7)

	if err := doc.WriteToFile(path); err != nil {
		return fmt.Errorf("writing template %s: %w", path, err)
	}
	return nil
}

func comma(n int) string {
	return humanize.Comma(int64(n))
}

// justify sets the element's text and its companion dotted leader so
// the value lands at the given column.
func justify(root *etree.Element, id, text string, width int) {
	setText(root, id, text)
	setText(root, id+"_dots", justifyDots(width-utf8.RuneCountInString(text)))
}

// justifyDots renders the dotted leader for a given padding length.
// Short paddings degrade to fixed strings so a dot never sits alone
// against the value.
func justifyDots(n int) string {
	switch {
	case n <= 0:
		return ""
	case n == 1:
		return " "
	case n == 2:
		return ". "
	default:
		return " " + strings.Repeat(".", n) + " "
	}
}

// ageDots matches justifyDots except that a two-character gap stays
// empty: the age line's trailing emoji makes the ". " form ragged.
func ageDots(n int) string {
	switch {
	case n > 2:
		return " " + strings.Repeat(".", n) + " "
	case n == 1:
		return " "
	default:
		return ""
	}
}

func setText(root *etree.Element, id, text string) {
	if el := findByID(root, id); el != nil {
		el.SetText(text)
	}
}

func findByID(el *etree.Element, id string) *etree.Element {
	if el.SelectAttrValue("id", "") == id {
		return el
	}
	for _, child := range el.ChildElements() {
		if found := findByID(child, id); found != nil {
			return found
		}
	}
	return nil
}
