package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"starsoftflow/internal/importer"
	"starsoftflow/internal/model"
)

// errAborted 用户在融资步骤选择放弃整个导入
var errAborted = errors.New("import aborted by user")

// catalogWriter 能新建资源与融资方案的目录
type catalogWriter interface {
	CreateContractedResource(ctx context.Context, name string, salary *float64) (model.User, error)
	CreateFinancing(ctx context.Context, f model.Financing) (model.Financing, error)
}

// autoResolver 不询问，直接新建合同制资源与融资方案
type autoResolver struct {
	w catalogWriter
}

func (r autoResolver) CreateResource(ctx context.Context, p importer.PendingResource) (string, error) {
	u, err := r.w.CreateContractedResource(ctx, p.Name, p.InferredSalary)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

func (r autoResolver) CreateFinancing(ctx context.Context, terms model.FinancingTerms) (string, error) {
	f, err := r.w.CreateFinancing(ctx, financingFromTerms(terms))
	if err != nil {
		return "", err
	}
	return f.ID, nil
}

// promptResolver 在终端逐个询问
type promptResolver struct {
	in  *bufio.Reader
	out io.Writer
	w   catalogWriter
}

func newPromptResolver(in io.Reader, out io.Writer, w catalogWriter) *promptResolver {
	return &promptResolver{in: bufio.NewReader(in), out: out, w: w}
}

func (r *promptResolver) CreateResource(ctx context.Context, p importer.PendingResource) (string, error) {
	salary := "未知"
	if p.InferredSalary != nil {
		salary = fmt.Sprintf("%.2f", *p.InferredSalary)
	}
	fmt.Fprintf(r.out, "资源 %q 不在用户目录中（推断薪资 %s）\n", p.Name, salary)

	for {
		choice, err := r.ask("[c] 新建合同制资源  [i] 输入已有标识  [q] 取消导入: ")
		if err != nil {
			return "", importer.ErrCancelled
		}
		switch strings.ToLower(choice) {
		case "c":
			u, err := r.w.CreateContractedResource(ctx, p.Name, p.InferredSalary)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(r.out, "已创建 %s (%s)\n", u.DisplayName, u.ID)
			return u.ID, nil
		case "i":
			id, err := r.ask("标识: ")
			if err != nil {
				return "", importer.ErrCancelled
			}
			if id != "" {
				return id, nil
			}
		case "q":
			return "", importer.ErrCancelled
		}
	}
}

func (r *promptResolver) CreateFinancing(ctx context.Context, terms model.FinancingTerms) (string, error) {
	fmt.Fprintf(r.out, "融资方案 %q 不在目录中\n", terms.Name)

	for {
		choice, err := r.ask("[c] 新建融资方案  [s] 跳过，不关联  [q] 取消导入: ")
		if err != nil {
			return "", importer.ErrCancelled
		}
		switch strings.ToLower(choice) {
		case "c":
			f, err := r.w.CreateFinancing(ctx, financingFromTerms(terms))
			if err != nil {
				return "", err
			}
			fmt.Fprintf(r.out, "已创建融资方案 %s (%s)\n", f.Name, f.ID)
			return f.ID, nil
		case "s":
			return "", importer.ErrCancelled
		case "q":
			return "", errAborted
		}
	}
}

// ask 读取一行，EOF 视为取消
func (r *promptResolver) ask(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	line, err := r.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func financingFromTerms(t model.FinancingTerms) model.Financing {
	f := model.Financing{Name: t.Name}
	if t.FinancingRate != nil {
		f.FinancingRate = *t.FinancingRate
	}
	if t.OverheadRate != nil {
		f.OverheadRate = *t.OverheadRate
	}
	if t.ETIValue != nil {
		f.ETIValue = *t.ETIValue
	}
	return f
}
