package model

import "github.com/charmbracelet/glamour"

const helpMarkdown = `# logpanel

Fetch log records from an instance and filter them in place.

## Fetching

| Key | Action |
| --- | --- |
| ` + "`i`" + ` | choose the instance |
| ` + "`f`" + ` / ` + "`T`" + ` | edit the from and to dates |
| ` + "`d`" + ` | edit the polling delay in milliseconds |
| ` + "`L`" + ` | toggle live polling |
| ` + "`enter`" + ` | clear the list and fetch |

Dates accept unix seconds, ` + "`2006-01-02`" + `, ` + "`2006-01-02 15:04`" + ` or RFC 3339.
An empty to date leaves the range open. Live polling only runs for open
ranges. The ` + "`local`" + ` instance has no date range.

## Filtering

| Key | Action |
| --- | --- |
| ` + "`t`" + ` | choose the record type (` + "`misc`" + ` is info and message) |
| ` + "`/`" + ` | edit the keyword (case sensitive) |

Filters apply to rows already shown and never fetch again.

## Other

| Key | Action |
| --- | --- |
| ` + "`y`" + ` | copy the visible rows |
| ` + "`?`" + ` | toggle this help |
| ` + "`q`" + ` | quit |
`

func renderHelp(width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width-8, 20)),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}
