package effect

import (
	"context"
	"fmt"
	"strings"

	"github.com/fdg312/careview/internal/upstream"
	"github.com/fdg312/careview/internal/viewstate"
	"go.uber.org/zap"
)

const (
	// FallbackMessage is shown for a failed fetch without a backend message.
	FallbackMessage = "기대 효과 정보를 불러오지 못했어요. 잠시 후 다시 시도해 주세요."
	// UnavailableMessage is shown when the backend has no prediction yet.
	UnavailableMessage = "아직 기대 효과를 계산할 데이터가 없어요."
)

// Service загружает прогноз и готовит данные страницы ожидаемого эффекта
type Service struct {
	client upstream.Getter
	path   string
	logger *zap.Logger
}

// NewService создаёт новый сервис. path — путь эндпоинта прогноза.
func NewService(client upstream.Getter, path string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client: client,
		path:   path,
		logger: logger.Named("effect"),
	}
}

// Fetch loads and shapes the prediction. Without a credential no request
// is made and upstream.ErrUnauthenticated is returned. A null or falsy
// payload yields a nil projection.
func (s *Service) Fetch(ctx context.Context, authorization string) (*Projection, error) {
	if strings.TrimSpace(authorization) == "" {
		return nil, upstream.ErrUnauthenticated
	}

	var payload *PredictionPayload
	if err := s.client.GetJSON(ctx, s.path, authorization, &payload); err != nil {
		s.logger.Warn("expected effect fetch failed",
			zap.Int("status", upstream.StatusCode(err)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("effect: fetch expected effect: %w", err)
	}
	return Shape(payload), nil
}

// NewLoader returns the state holder of one mounted effect view.
// An absent projection settles as viewstate.StatusUnavailable.
func (s *Service) NewLoader() *viewstate.Loader[*Projection] {
	return viewstate.NewLoader(viewstate.Options[*Projection]{
		Describe: upstream.Describe(FallbackMessage),
		Empty:    func(p *Projection) bool { return p == nil },
	})
}

// Load runs a single effect view to completion.
func (s *Service) Load(ctx context.Context, authorization string) View {
	loader := s.NewLoader()
	defer loader.Close()

	st := loader.Run(ctx, func(ctx context.Context) (*Projection, error) {
		return s.Fetch(ctx, authorization)
	})
	return NewView(st)
}

// NewView builds the response envelope from a view state.
func NewView(st viewstate.State[*Projection]) View {
	v := View{
		State:        st.Status,
		Message:      st.Message,
		Unauthorized: st.Unauthorized,
		Projection:   st.Data,
		Cards:        StatCards(st.Data),
	}
	if st.Status == viewstate.StatusUnavailable && v.Message == "" {
		v.Message = UnavailableMessage
	}
	return v
}
