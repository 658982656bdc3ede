package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/spendlens/internal/chat/domain"
	"github.com/smallbiznis/spendlens/internal/clock"
	"github.com/smallbiznis/spendlens/internal/config"
	obscontext "github.com/smallbiznis/spendlens/internal/observability/context"
	obslogger "github.com/smallbiznis/spendlens/internal/observability/logger"
	"github.com/smallbiznis/spendlens/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const historyWriteTimeout = 5 * time.Second

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Completer domain.Completer
	Config    config.Config
	Analytics *config.AnalyticsConfigHolder
	Clock     clock.Clock
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	completer domain.Completer
	llm       config.LLMConfig
	chat      config.ChatConfig
	analytics *config.AnalyticsConfigHolder
	clock     clock.Clock
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	analytics := p.Analytics
	if analytics == nil {
		analytics = config.NewStaticAnalyticsConfigHolder(config.DefaultAnalyticsConfig())
	}
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("chat.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		completer: p.Completer,
		llm:       p.Config.LLM,
		chat:      p.Config.Chat,
		analytics: analytics,
		clock:     p.Clock,
		metrics:   p.Metrics,
	}
}

func (s *Service) Ask(ctx context.Context, req domain.AskRequest) (domain.AskResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		s.metrics.RecordChatRequest(ctx, metrics.ChatOutcomeInvalidInput)
		return domain.AskResult{}, domain.ErrInvalidQuery
	}
	ctx, _ = obscontext.EnsureCorrelationID(ctx)
	log := obslogger.WithContext(ctx, s.log)

	reply, err := s.complete(ctx, req.Query)
	if err != nil {
		log.Warn("llm completion failed",
			zap.String("provider", s.completer.Provider()),
			zap.Error(err),
		)
		s.persist(ctx, req.Query, nil, nil, err)
		s.metrics.RecordChatRequest(ctx, metrics.ChatOutcomeUpstream)
		return domain.AskResult{}, err
	}

	statement := ExtractSQL(reply)

	if s.chat.ReadOnly {
		if err := CheckReadOnly(statement); err != nil {
			qerr := &domain.QueryError{Statement: statement, Cause: err}
			log.Warn("generated statement rejected", zap.Error(err))
			s.persist(ctx, req.Query, &statement, nil, qerr)
			s.metrics.RecordChatRequest(ctx, metrics.ChatOutcomeRejected)
			return domain.AskResult{}, qerr
		}
	}

	result, err := s.repo.Execute(ctx, s.db, statement, domain.ExecOptions{
		ReadOnly: s.chat.ReadOnly,
		Timeout:  s.chat.QueryTimeout,
	})
	if err != nil {
		qerr := &domain.QueryError{Statement: statement, Cause: err}
		log.Warn("generated statement failed", zap.Error(err))
		s.metrics.RecordQueryError(ctx, err)
		s.persist(ctx, req.Query, &statement, nil, qerr)
		s.metrics.RecordChatRequest(ctx, metrics.ChatOutcomeQueryFailed)
		return domain.AskResult{}, qerr
	}

	rows := result.Rows
	if rows == nil {
		rows = []map[string]any{}
	}
	columns := result.Columns
	if columns == nil {
		columns = []string{}
	}

	s.persist(ctx, req.Query, &statement, rows, nil)
	s.metrics.RecordChatRequest(ctx, metrics.ChatOutcomeSuccess)

	return domain.AskResult{
		Query:    req.Query,
		SQL:      statement,
		Columns:  columns,
		Results:  rows,
		RowCount: len(rows),
	}, nil
}

// complete asks the model for a statement. Every failure mode, including an
// empty reply, surfaces as ErrUpstreamUnavailable.
func (s *Service) complete(ctx context.Context, question string) (string, error) {
	callCtx := ctx
	if s.llm.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.llm.Timeout)
		defer cancel()
	}

	start := time.Now()
	completion, err := s.completer.Complete(callCtx, domain.CompletionRequest{
		System:      SystemPrompt,
		User:        UserPrompt(question),
		Temperature: s.llm.Temperature,
		MaxTokens:   s.llm.MaxTokens,
	})
	s.metrics.RecordLLMLatency(ctx, s.completer.Provider(), time.Since(start))

	if err != nil {
		if errors.Is(err, domain.ErrUpstreamUnavailable) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	if strings.TrimSpace(completion.Text) == "" {
		return "", fmt.Errorf("%w: empty completion", domain.ErrUpstreamUnavailable)
	}
	return completion.Text, nil
}

// persist records the attempt. A failed write is logged and never changes
// the response.
func (s *Service) persist(ctx context.Context, question string, statement *string, rows []map[string]any, cause error) {
	entry := &domain.ChatHistoryEntry{
		ID:        s.genID.Generate(),
		Query:     question,
		SQL:       statement,
		Results:   datatypes.JSON("null"),
		CreatedAt: s.clock.Now(),
	}
	if cause != nil {
		msg := cause.Error()
		entry.Error = &msg
	} else {
		raw, err := json.Marshal(rows)
		if err != nil {
			s.log.Warn("encode chat results", zap.Error(err))
		} else {
			entry.Results = datatypes.JSON(raw)
		}
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyWriteTimeout)
	defer cancel()

	if err := s.repo.InsertHistory(writeCtx, s.db, entry); err != nil {
		obslogger.WithContext(ctx, s.log).Warn("failed to persist chat history",
			zap.String("history_id", entry.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) History(ctx context.Context, limit int) ([]domain.HistoryItem, error) {
	cfg := s.analytics.Get()
	switch {
	case limit < 0:
		return nil, domain.ErrInvalidLimit
	case limit == 0:
		limit = cfg.HistoryDefaultLimit
	case limit > cfg.HistoryMaxLimit:
		limit = cfg.HistoryMaxLimit
	}

	entries, err := s.repo.ListHistory(ctx, s.db, limit)
	if err != nil {
		return nil, err
	}

	items := make([]domain.HistoryItem, 0, len(entries))
	for _, entry := range entries {
		item := domain.HistoryItem{
			ID:        entry.ID,
			Query:     entry.Query,
			SQL:       entry.SQL,
			Error:     entry.Error,
			CreatedAt: entry.CreatedAt,
		}
		if len(entry.Results) > 0 && string(entry.Results) != "null" {
			rows, err := decodeRows(entry.Results)
			if err != nil {
				s.log.Warn("decode chat history results",
					zap.String("history_id", entry.ID.String()),
					zap.Error(err),
				)
			} else {
				item.Results = rows
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func decodeRows(raw datatypes.JSON) ([]map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}
