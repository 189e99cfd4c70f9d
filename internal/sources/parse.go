package sources

import (
	"fmt"
	"regexp"
	"strings"

	"starrail-backend/internal/codes"
	"starrail-backend/lib/htmlutil"
	"starrail-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

func text(sel *goquery.Selection) string {
	return htmlutil.CleanText(sel.Text())
}

var (
	plusSep  = regexp.MustCompile(`\s\+\s`)
	commaSep = regexp.MustCompile(`,`)
	andSep   = regexp.MustCompile(`\sand\s|,\s|&`)
	wordAnd  = regexp.MustCompile(`\sand\s`)
	parens   = regexp.MustCompile(`[()]`)
)

func parsePrydwen(doc *goquery.Document) []codes.Candidate {
	var out []codes.Candidate
	doc.Find(".codes .box").Each(func(_ int, box *goquery.Selection) {
		code := strings.TrimSpace(strings.ReplaceAll(text(box.Find(".code")), "NEW!", ""))
		rewards := textutil.SplitTrim(text(box.Find(".rewards")), plusSep)
		out = append(out, codes.Candidate{Code: code, Rewards: rewards})
	})
	return out
}

func parseGame8(doc *goquery.Document) []codes.Candidate {
	var out []codes.Candidate
	doc.Find(".a-listItem").Each(func(_ int, item *goquery.Selection) {
		code := text(item.Find(".a-bold"))
		if code == "" {
			return
		}
		rest := strings.Replace(text(item), code, "", 1)
		rest = parens.ReplaceAllString(rest, "")
		out = append(out, codes.Candidate{
			Code:    code,
			Rewards: textutil.SplitTrim(rest, commaSep),
		})
	})
	return out
}

var (
	fandomCodeRegex   = regexp.MustCompile(`HSRGRANDOPEN[0-9]|[A-Z0-9]{12}`)
	fandomNoiseRegex  = regexp.MustCompile(`\bAll\b|\[\d+\]`)
	fandomRewardRegex = regexp.MustCompile(`([^×]+?)\s*×\s*(\d+(?:,\d{3})*)`)
)

// parseFandomRewards turns "Stellar Jade ×50 Credit ×10,000" into
// ["Stellar Jade x50", "Credit x10,000"].
func parseFandomRewards(s string) []string {
	var out []string
	for _, m := range fandomRewardRegex.FindAllStringSubmatch(s, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" {
			continue
		}
		out = append(out, fmt.Sprintf("%s x%s", name, m[2]))
	}
	return out
}

func parseFandom(doc *goquery.Document) []codes.Candidate {
	var out []codes.Candidate
	table := doc.Find("#mw-content-text > div.mw-parser-output > table").First()
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if row.Find("td").Length() == 0 {
			return
		}
		line := strings.Join(htmlutil.GetLines(row.Get(0)), " ")
		line = htmlutil.CleanText(fandomNoiseRegex.ReplaceAllString(line, ""))

		loc := fandomCodeRegex.FindStringIndex(line)
		if loc == nil {
			return
		}
		code := line[loc[0]:loc[1]]
		rest := line[loc[1]:]
		if idx := strings.Index(rest, "Discovered"); idx >= 0 {
			rest = rest[:idx]
		}
		out = append(out, codes.Candidate{
			Code:    code,
			Rewards: parseFandomRewards(rest),
		})
	})
	return out
}

// parseEurogamer reads the first table, each row is (code, rewards, ...).
func parseEurogamer(doc *goquery.Document) []codes.Candidate {
	var out []codes.Candidate
	doc.Find("table").First().Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		code := text(cells.Eq(0))
		rewards := textutil.SplitTrim(text(cells.Eq(1)), wordAnd)
		out = append(out, codes.Candidate{Code: code, Rewards: rewards})
	})
	return out
}

var (
	polygonItemRegex   = regexp.MustCompile(`^(.*?)\((.*?)\)`)
	polygonCodeRegex   = regexp.MustCompile(`^[A-Z0-9]{6,}$`)
	polygonCommentTail = regexp.MustCompile(`\s*\x{2014}.*`)
)

func parsePolygon(doc *goquery.Document) []codes.Candidate {
	var out []codes.Candidate
	doc.Find("ul li").Each(func(_ int, item *goquery.Selection) {
		match := polygonItemRegex.FindStringSubmatch(text(item))
		if match == nil {
			return
		}
		code := strings.TrimSpace(match[1])
		if !polygonCodeRegex.MatchString(code) {
			return
		}
		var rewards []string
		for _, r := range textutil.SplitTrim(match[2], andSep) {
			r = strings.TrimSpace(polygonCommentTail.ReplaceAllString(r, ""))
			if r != "" {
				rewards = append(rewards, r)
			}
		}
		out = append(out, codes.Candidate{Code: code, Rewards: rewards})
	})
	return out
}
