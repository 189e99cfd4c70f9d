package sources

import (
	"strings"
	"testing"

	"starrail-backend/internal/codes"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func document(t *testing.T, html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestParsePrydwen(t *testing.T) {
	doc := document(t, `
<div class="codes">
  <div class="box">
    <p class="code">STARRAILGIFT <span>NEW!</span></p>
    <p class="rewards">50 Stellar Jade + 2 Traveler's Guide + 10000 Credits</p>
  </div>
  <div class="box">
    <p class="code">HSRVER22LKTX</p>
    <p class="rewards">100 Stellar Jade</p>
  </div>
</div>`)

	require.Equal(t, []codes.Candidate{
		{Code: "STARRAILGIFT", Rewards: []string{"50 Stellar Jade", "2 Traveler's Guide", "10000 Credits"}},
		{Code: "HSRVER22LKTX", Rewards: []string{"100 Stellar Jade"}},
	}, parsePrydwen(doc))
}

func TestParseGame8(t *testing.T) {
	doc := document(t, `
<ul>
  <li class="a-listItem"><b class="a-bold">STARRAILGIFT</b> (Stellar Jade x50, Credit x10000)</li>
  <li class="a-listItem"><b class="a-bold">5S6ZHRWUEF4G</b> (Stellar Jade x100)</li>
  <li class="a-listItem">no code here</li>
</ul>`)

	require.Equal(t, []codes.Candidate{
		{Code: "STARRAILGIFT", Rewards: []string{"Stellar Jade x50", "Credit x10000"}},
		{Code: "5S6ZHRWUEF4G", Rewards: []string{"Stellar Jade x100"}},
	}, parseGame8(doc))
}

func TestParseFandom(t *testing.T) {
	doc := document(t, `
<div id="mw-content-text"><div class="mw-parser-output">
<table><tbody>
  <tr><th>Code</th><th>Server</th><th>Rewards</th><th>Duration</th></tr>
  <tr>
    <td>STARRAILGIFT[1]</td>
    <td>All</td>
    <td><span>Stellar Jade ×50</span> <span>Credit ×10,000</span></td>
    <td>Discovered: April 26, 2023</td>
  </tr>
  <tr>
    <td>HSRGRANDOPEN2</td>
    <td>All</td>
    <td>Stellar Jade ×100</td>
    <td>Discovered: April 26, 2023</td>
  </tr>
  <tr><td>nothing</td><td>All</td><td></td><td></td></tr>
</tbody></table>
</div></div>`)

	require.Equal(t, []codes.Candidate{
		{Code: "STARRAILGIFT", Rewards: []string{"Stellar Jade x50", "Credit x10,000"}},
		{Code: "HSRGRANDOPEN2", Rewards: []string{"Stellar Jade x100"}},
	}, parseFandom(doc))
}

func TestParseEurogamer(t *testing.T) {
	doc := document(t, `
<table>
  <tr><th>Code</th><th>Rewards</th><th>Expires</th></tr>
  <tr><td>STARRAILGIFT</td><td>50 Stellar Jade and 2 Traveler's Guides</td><td>Unknown</td></tr>
  <tr><td>HSRVER22LKTX</td><td>100 Stellar Jade</td><td>Unknown</td></tr>
</table>`)

	require.Equal(t, []codes.Candidate{
		{Code: "STARRAILGIFT", Rewards: []string{"50 Stellar Jade", "2 Traveler's Guides"}},
		{Code: "HSRVER22LKTX", Rewards: []string{"100 Stellar Jade"}},
	}, parseEurogamer(doc))
}

func TestParsePolygon(t *testing.T) {
	doc := document(t, "<ul>"+
		"<li>STARRAILGIFT (50 Stellar Jade, two Traveler’s Guides and 10,000 Credits)</li>"+
		"<li>HSRVER22LKTX (100 Stellar Jade \u2014 new!)</li>"+
		"<li>Guides (see all)</li>"+
		"<li>Just a menu item</li>"+
		"</ul>")

	require.Equal(t, []codes.Candidate{
		{Code: "STARRAILGIFT", Rewards: []string{"50 Stellar Jade", "two Traveler’s Guides", "10,000 Credits"}},
		{Code: "HSRVER22LKTX", Rewards: []string{"100 Stellar Jade"}},
	}, parsePolygon(doc))
}
