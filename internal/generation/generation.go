// Package generation turns a code generation form into a model prompt and the
// model's reply into a {code, preview, files} result.
package generation

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/illegalcall/codecraft/internal/completion"
	"github.com/illegalcall/codecraft/internal/models"
)

const defaultTemplate = "custom"

var fencePattern = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*\\s*\n(.*?)```")

type Service struct {
	completer completion.Completer
	logger    *slog.Logger
}

func NewService(completer completion.Completer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{completer: completer, logger: logger}
}

// Generate validates req, asks the model and parses its reply. Upstream errors
// are returned unwrapped so their message reaches the client verbatim.
func (s *Service) Generate(ctx context.Context, req models.GenerateRequest) (*models.GenerationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.logger.Info("Generating code", "project", req.ProjectName, "framework", req.Framework, "template", templateOf(req))

	reply, err := s.completer.CompleteChat(ctx, BuildPrompt(req))
	if err != nil {
		s.logger.Error("Completion failed", "project", req.ProjectName, "error", err)
		return nil, err
	}

	result := ParseReply(reply)
	s.logger.Info("Code generated", "project", req.ProjectName, "files", len(result.Files), "code_bytes", len(result.Code))
	return result, nil
}

func templateOf(req models.GenerateRequest) string {
	if t := strings.TrimSpace(req.Template); t != "" {
		return t
	}
	return defaultTemplate
}

// BuildPrompt renders the single user-role message sent to the model.
func BuildPrompt(req models.GenerateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a %s application named %q.\n", req.Framework, req.ProjectName)
	if t := templateOf(req); t != defaultTemplate {
		fmt.Fprintf(&b, "Start from a %s template.\n", t)
	}
	b.WriteString("Reply with only a JSON object with these keys:\n")
	b.WriteString(`- "code": the complete main source file` + "\n")
	b.WriteString(`- "preview": a self-contained HTML document that renders the UI` + "\n")
	b.WriteString(`- "files": an array of {"path", "content"} objects for every file` + "\n")
	b.WriteString("\nRequirements:\n")
	b.WriteString(strings.TrimSpace(req.Prompt))
	return b.String()
}

// ParseReply extracts a GenerationResult from the model's reply. JSON replies
// (optionally fenced) are read field by field; anything else is treated as code.
func ParseReply(reply string) *models.GenerationResult {
	trimmed := strings.TrimSpace(reply)
	candidate := trimmed
	if m := fencePattern.FindStringSubmatch(trimmed); m != nil {
		candidate = strings.TrimSpace(m[1])
	}

	if gjson.Valid(candidate) && gjson.Parse(candidate).IsObject() {
		data := gjson.Parse(candidate)
		result := &models.GenerationResult{
			Code:    data.Get("code").String(),
			Preview: data.Get("preview").String(),
			Files:   []models.GeneratedFile{},
		}
		data.Get("files").ForEach(func(_, f gjson.Result) bool {
			if path := f.Get("path").String(); path != "" {
				result.Files = append(result.Files, models.GeneratedFile{
					Path:    path,
					Content: f.Get("content").String(),
				})
			}
			return true
		})
		if result.Code == "" && len(result.Files) > 0 {
			result.Code = result.Files[0].Content
		}
		if result.Preview == "" {
			result.Preview = PreviewFor(result.Code)
		}
		return result
	}

	return &models.GenerationResult{
		Code:    candidate,
		Preview: PreviewFor(candidate),
		Files:   []models.GeneratedFile{},
	}
}

// PreviewFor returns code itself when it is an HTML document, otherwise a
// page that shows the escaped source.
func PreviewFor(code string) string {
	lower := strings.ToLower(strings.TrimSpace(code))
	if strings.HasPrefix(lower, "<!doctype html") || strings.HasPrefix(lower, "<html") {
		return code
	}
	return "<!DOCTYPE html><html><head><meta charset=\"utf-8\"></head><body><pre>" +
		html.EscapeString(code) + "</pre></body></html>"
}
