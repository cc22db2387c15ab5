package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"starsoftflow/internal/model"
	"starsoftflow/internal/parser"
)

var (
	templateOut   string
	templateStart string
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "生成示例预算工作簿",
	Long: `生成符合导入格式的示例工作簿。

Examples:
  starsoftflow template -o budget.xlsx
  starsoftflow template -o budget.xlsx --start 2025-03`,
	RunE: runTemplate,
}

func init() {
	templateCmd.Flags().StringVarP(&templateOut, "output", "o", "budget-template.xlsx", "输出文件")
	templateCmd.Flags().StringVar(&templateStart, "start", "", "首个月份 YYYY-MM（默认今年一月）")
}

func runTemplate(cmd *cobra.Command, args []string) error {
	start, err := parseStartMonth(templateStart, time.Now())
	if err != nil {
		return err
	}

	f, err := os.Create(templateOut)
	if err != nil {
		return fmt.Errorf("create %s: %w", templateOut, err)
	}
	if err := parser.WriteTemplate(f, start); err != nil {
		f.Close()
		return fmt.Errorf("write template: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "已生成 %s\n", templateOut)
	return nil
}

func parseStartMonth(v string, now time.Time) (model.MonthYear, error) {
	if v == "" {
		return model.MonthYear{Month: 1, Year: now.Year()}, nil
	}
	t, err := time.Parse("2006-01", v)
	if err != nil {
		return model.MonthYear{}, fmt.Errorf("invalid --start %q, expected YYYY-MM", v)
	}
	return model.MonthYear{Month: int(t.Month()), Year: t.Year()}, nil
}
