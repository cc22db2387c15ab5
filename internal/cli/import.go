package cli

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"starsoftflow/internal/config"
	"starsoftflow/internal/importer"
	"starsoftflow/internal/model"
	"starsoftflow/internal/parser"
	memstore "starsoftflow/internal/service/store"
	"starsoftflow/internal/store"
)

// importOptions import 命令参数
type importOptions struct {
	File       string
	DraftID    string
	AutoCreate bool
	DryRun     bool
}

var importOpts importOptions

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "导入预算工作簿到项目草稿",
	Long: `导入预算工作簿。目录中不存在的资源与融资方案会逐个询问，
也可以用 --auto-create 直接新建。--dry-run 只打印将要执行的动作，不写数据库。

Examples:
  starsoftflow import budget.xlsx
  starsoftflow import budget.xlsx --auto-create --draft proj-42
  starsoftflow import budget.xlsx --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importOpts.DraftID, "draft", "default", "目标项目草稿")
	importCmd.Flags().BoolVar(&importOpts.AutoCreate, "auto-create", false, "自动新建缺失的资源与融资方案")
	importCmd.Flags().BoolVar(&importOpts.DryRun, "dry-run", false, "只解析与对账，不写数据库")
}

func runImport(cmd *cobra.Command, args []string) error {
	opts := importOpts
	opts.File = args[0]

	st, err := store.New(config.DatabasePath(dataDir))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	return importFile(cmd.Context(), st, opts, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
}

// importFile 阻塞式执行一次导入；dry-run 时目录与草稿都使用内存副本
func importFile(ctx context.Context, st *store.Store, opts importOptions, in io.Reader, out io.Writer, logger *slog.Logger) error {
	data, err := os.ReadFile(opts.File)
	if err != nil {
		return fmt.Errorf("read %s: %w", opts.File, err)
	}
	filename := filepath.Base(opts.File)

	var (
		deps   importer.Deps
		writer catalogWriter
		mem    *memstore.MemoryStore
	)
	if opts.DryRun {
		mem, err = snapshotCatalog(ctx, st)
		if err != nil {
			return err
		}
		deps = importer.Deps{Directory: mem, Financings: mem, Sink: mem, Logger: logger}
		writer = mem
	} else {
		deps = importer.Deps{Directory: st, Financings: st, Sink: st.DraftSink(opts.DraftID), Logger: logger}
		writer = st
	}

	var resolver importer.Resolver = newPromptResolver(in, out, writer)
	if opts.AutoCreate {
		resolver = autoResolver{w: writer}
	}

	session := importer.NewSession(deps)

	var logID int64
	if !opts.DryRun {
		sum := sha256.Sum256(data)
		logID, err = st.CreateImportLog(ctx, session.ID(), opts.DraftID, filename, int64(len(data)), hex.EncodeToString(sum[:]))
		if err != nil {
			return err
		}
	}

	summary, runErr := importer.Run(ctx, session, bytes.NewReader(data), filename, resolver)

	if !opts.DryRun {
		recordImport(ctx, st, logID, session, summary, runErr, logger)
	}
	if runErr != nil {
		if errors.Is(runErr, importer.ErrCancelled) || errors.Is(runErr, errAborted) {
			fmt.Fprintln(out, "导入已取消，未写入任何数据")
		}
		return runErr
	}

	printSummary(out, summary)
	if opts.DryRun {
		printActions(out, mem.Actions())
	}
	return nil
}

// snapshotCatalog 把数据库中的目录复制到内存
func snapshotCatalog(ctx context.Context, st *store.Store) (*memstore.MemoryStore, error) {
	users, err := st.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	financings, err := st.ListFinancings(ctx)
	if err != nil {
		return nil, err
	}
	mem := memstore.NewMemoryStore()
	for _, u := range users {
		mem.AddUser(u)
	}
	for _, f := range financings {
		mem.AddFinancing(f)
	}
	return mem, nil
}

func recordImport(ctx context.Context, st *store.Store, logID int64, s *importer.Session, summary *model.ImportSummary, runErr error, logger *slog.Logger) {
	var metas []store.SheetMeta
	for _, sh := range s.Sheets() {
		metas = append(metas, store.SheetMeta{
			SheetName:    sh.Name,
			TotalRows:    sh.Rows,
			TotalColumns: sh.Columns,
			Recognized:   parser.KnownSheet(sh.Name),
		})
	}
	if len(metas) > 0 {
		if err := st.InsertSheetsMeta(ctx, logID, metas); err != nil {
			logger.Warn("record sheets meta failed", "error", err)
		}
	}

	status, msg := store.ImportStatusDone, ""
	switch {
	case runErr == nil:
	case s.State() == importer.StateIdle:
		status = store.ImportStatusCancelled
	default:
		status, msg = store.ImportStatusError, runErr.Error()
	}
	if err := st.FinishImportLog(ctx, logID, status, summary, msg); err != nil {
		logger.Error("finish import log failed", "error", err)
	}
}

func printSummary(out io.Writer, s *model.ImportSummary) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "项目\t%s\n", s.ProjectName)
	fmt.Fprintf(tw, "工作包\t%d\n", s.Workpackages)
	fmt.Fprintf(tw, "资源\t%d（新建 %d）\n", s.Resources, s.CreatedResources)
	fmt.Fprintf(tw, "分配\t%d\n", s.Allocations)
	fmt.Fprintf(tw, "材料\t%d（归入首个工作包 %d）\n", s.Materials, s.FallbackMaterials)
	fmt.Fprintf(tw, "融资方案\t%v\n", s.FinancingLinked)
	fmt.Fprintf(tw, "动作\t%d\n", s.Actions)
	tw.Flush()
}

func printActions(out io.Writer, actions []model.Action) {
	fmt.Fprintln(out, "\n将执行的动作:")
	for i, a := range actions {
		switch a.Kind {
		case model.ActionUpdateProject:
			fmt.Fprintf(out, "%3d %s %q\n", i, a.Kind, a.Project.Name)
		case model.ActionAddWorkpackage:
			fmt.Fprintf(out, "%3d %s %s %q\n", i, a.Kind, a.Workpackage.Key, a.Workpackage.Name)
		case model.ActionAddAllocation:
			al := a.Allocation
			fmt.Fprintf(out, "%3d %s %s %s %02d/%d %s\n", i, a.Kind, al.WorkpackageKey, al.ResourceID, al.Month, al.Year, al.Occupancy)
		case model.ActionAddMaterial:
			m := a.Material
			fmt.Fprintf(out, "%3d %s %s %q %.2f x %.2f %s\n", i, a.Kind, m.WorkpackageKey, m.Name, m.UnitPrice, m.Quantity, m.Category)
		default:
			fmt.Fprintf(out, "%3d %s\n", i, a.Kind)
		}
	}
}
