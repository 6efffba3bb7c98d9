package main

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/JoowonYun/CasperLabs/core/execution/executor"
	"github.com/JoowonYun/CasperLabs/core/execution/telemetry"
	"github.com/JoowonYun/CasperLabs/core/value"
	"github.com/olekukonko/tablewriter"
)

func render(out io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

func printDeploy(out io.Writer, res executor.DeployResult) {
	rows := make([][]string, len(res.Phases))
	for i, p := range res.Phases {
		errMsg := ""
		if p.Result.Err != nil {
			errMsg = p.Result.Err.Error()
		}

		rows[i] = []string{
			p.Phase.String(),
			telemetry.Outcome(p.Result),
			p.Result.Cost.String(),
			fmt.Sprint(p.Result.Effect.Size()),
			errMsg,
		}
	}

	render(out, []string{"Phase", "Outcome", "Cost", "Keys", "Error"}, rows)

	keys := res.Effect.Keys()

	changes := make([][]string, len(keys))
	for i, k := range keys {
		tr := "-"
		if t, found := res.Effect.Transforms[k]; found {
			tr = t.String()
		}

		changes[i] = []string{k.String(), res.Effect.Ops[k].String(), tr}
	}

	render(out, []string{"Key", "Op", "Transform"}, changes)

	fmt.Fprintf(out, "total cost: %s\n", res.Cost)
}

func formatValue(v value.Value) string {
	switch val := v.(type) {
	case value.Unit:
		return "()"
	case value.Bytes:
		return hex.EncodeToString(val)
	case value.Key:
		return val.Key.String()
	case value.Option:
		if val.IsNone() {
			return "none"
		}
		return "some(" + formatValue(val.Some) + ")"
	case value.Account:
		return fmt.Sprintf("purse=%s keys=%v", val.MainPurse, val.NamedKeys.Names())
	case value.Contract:
		return fmt.Sprintf("%s v%d keys=%v", val.Name, val.ProtocolVersion, val.NamedKeys.Names())
	default:
		return fmt.Sprint(v)
	}
}
