package dashboard

import (
	"context"
	"fmt"

	"github.com/fdg312/careview/internal/upstream"
	"github.com/fdg312/careview/internal/viewstate"
	"go.uber.org/zap"
)

// FallbackMessage is shown when the records could not be loaded and the
// backend gave no better explanation.
const FallbackMessage = "기록 데이터를 불러오지 못했어요. 잠시 후 다시 시도해 주세요."

// Service загружает недельные записи и строит из них дашборд
type Service struct {
	client upstream.Getter
	path   string
	logger *zap.Logger
}

// NewService создаёт новый сервис. path — путь эндпоинта недельных записей.
func NewService(client upstream.Getter, path string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client: client,
		path:   path,
		logger: logger.Named("dashboard"),
	}
}

// Fetch loads the weekly records and derives the summary.
// The authorization header, if any, is forwarded as is.
func (s *Service) Fetch(ctx context.Context, authorization string) (Summary, error) {
	var page RecordPage
	if err := s.client.GetJSON(ctx, s.path, authorization, &page); err != nil {
		s.logger.Warn("weekly records fetch failed", zap.Error(err))
		return Summary{}, fmt.Errorf("dashboard: fetch weekly records: %w", err)
	}
	return Derive(page.Days()), nil
}

// NewLoader returns the state holder of one mounted dashboard view.
func (s *Service) NewLoader() *viewstate.Loader[Summary] {
	return viewstate.NewLoader(viewstate.Options[Summary]{
		Describe: upstream.Describe(FallbackMessage),
	})
}

// Load runs a single dashboard view to completion.
func (s *Service) Load(ctx context.Context, authorization string) View {
	loader := s.NewLoader()
	defer loader.Close()

	st := loader.Run(ctx, func(ctx context.Context) (Summary, error) {
		return s.Fetch(ctx, authorization)
	})
	return NewView(st)
}

// NewView builds the response envelope from a view state.
func NewView(st viewstate.State[Summary]) View {
	summary := st.Data.normalized()
	return View{
		State:        st.Status,
		Message:      st.Message,
		Unauthorized: st.Unauthorized,
		Summary:      summary,
		Cards:        Cards(summary),
	}
}
