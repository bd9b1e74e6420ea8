package journal

import (
	"bytes"
	"fmt"
	"text/template"
)

var summaryTmpl = template.Must(template.New("summary").Parse(`backtest {{.ID}}
  instrument:   {{.Code}}
  strategy:     {{.Strategy}}
  granularity:  {{.Granularity}}
  period:       {{.Start.Format "2006-01-02"}} .. {{.End.Format "2006-01-02"}}
  capital:      {{printf "%.2f" .InitialCapital}} -> {{printf "%.2f" .FinalCapital}}
  return:       {{printf "%.2f" .ReturnPct}}%
  max drawdown: {{printf "%.2f" .MaxDrawdownPct}}%
  trades:       {{.Trades}} ({{.Wins}} wins / {{.Losses}} losses)
  commission:   {{printf "%.2f" .Commission}}
`))

// Summary renders one run as a plain-text block for terminal output.
func (r Run) Summary() string {
	var b bytes.Buffer
	if err := summaryTmpl.Execute(&b, r); err != nil {
		return fmt.Sprintf("backtest %s: %v", r.ID, err)
	}
	return b.String()
}
