package policy

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
)

// Ключи таблицы settings
const (
	KeyIndividualAdvanceDays  = "horizon.individual_days"
	KeyAssociationAdvanceDays = "horizon.association_days"
	KeyAdminAdvanceDays       = "horizon.admin_days"
	KeyMinNoticeMinutes       = "min_notice_minutes"
	KeySlotGranularity        = "slot_granularity_minutes"

	// price.<class>.<session>[.accompanied], например price.individual.regular
	keyPricePrefix = "price."
)

// Provider отдаёт PolicyConfig: значения из конфигурации, переопределённые таблицей settings.
// Результат кешируется на ttl; Invalidate сбрасывает кеш
type Provider struct {
	defaults     *domain.PolicyConfig
	settingsRepo SettingsRepository
	ttl          time.Duration
	timeProvider TimeProvider
	logger       Logger

	mu       sync.RWMutex
	cached   *domain.PolicyConfig
	loadedAt time.Time
}

// NewProvider создает провайдер правил. ttl <= 0 отключает кеширование
func NewProvider(
	defaults *domain.PolicyConfig,
	settingsRepo SettingsRepository,
	ttl time.Duration,
	logger Logger,
) *Provider {
	return &Provider{
		defaults:     defaults,
		settingsRepo: settingsRepo,
		ttl:          ttl,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Get возвращает актуальный PolicyConfig. Вызывающий не должен его изменять
func (p *Provider) Get(ctx context.Context) (*domain.PolicyConfig, error) {
	now := p.timeProvider.Now()

	p.mu.RLock()
	cached, loadedAt := p.cached, p.loadedAt
	p.mu.RUnlock()

	if cached != nil && p.ttl > 0 && now.Sub(loadedAt) < p.ttl {
		return cached, nil
	}

	settings, err := p.settingsRepo.GetAll(ctx)
	if err != nil {
		if cached != nil {
			p.logger.Warn("PolicyProvider: failed to reload settings, serving cached policy: %v", err)
			return cached, nil
		}
		p.logger.Error("PolicyProvider: failed to load settings: %v", err)
		return nil, fmt.Errorf("%w: Get - load settings: %v", ErrInternal, err)
	}

	policy := p.apply(settings)

	p.mu.Lock()
	p.cached = policy
	p.loadedAt = now
	p.mu.Unlock()

	return policy, nil
}

// Invalidate сбрасывает кеш; следующий Get перечитает настройки
func (p *Provider) Invalidate() {
	p.mu.Lock()
	p.cached = nil
	p.mu.Unlock()
	p.logger.Info("PolicyProvider: cache invalidated")
}

// apply накладывает настройки на значения по умолчанию.
// Некорректные значения пропускаются; если итог не проходит валидацию, используются значения по умолчанию
func (p *Provider) apply(settings map[string]string) *domain.PolicyConfig {
	policy := p.defaults.Clone()

	for key, raw := range settings {
		value := strings.TrimSpace(raw)
		switch key {
		case KeyIndividualAdvanceDays:
			p.setInt(key, value, &policy.IndividualAdvanceDays)
		case KeyAssociationAdvanceDays:
			p.setInt(key, value, &policy.AssociationAdvanceDays)
		case KeyAdminAdvanceDays:
			p.setInt(key, value, &policy.AdminAdvanceDays)
		case KeyMinNoticeMinutes:
			p.setInt(key, value, &policy.MinNoticeMinutes)
		case KeySlotGranularity:
			p.setInt(key, value, &policy.SlotGranularityMinutes)
		default:
			if strings.HasPrefix(key, keyPricePrefix) {
				p.setPrice(policy, key, value)
			}
		}
	}

	if err := policy.Validate(); err != nil {
		p.logger.Warn("PolicyProvider: settings produce invalid policy, using defaults: %v", err)
		return p.defaults
	}
	return policy
}

func (p *Provider) setInt(key, value string, dst *int) {
	n, err := strconv.Atoi(value)
	if err != nil {
		p.logger.Warn("PolicyProvider: ignoring setting %s=%q: %v", key, value, err)
		return
	}
	*dst = n
}

func (p *Provider) setPrice(policy *domain.PolicyConfig, key, value string) {
	parts := strings.Split(strings.TrimPrefix(key, keyPricePrefix), ".")
	if len(parts) < 2 || len(parts) > 3 || (len(parts) == 3 && parts[2] != "accompanied") {
		p.logger.Warn("PolicyProvider: ignoring malformed price key %s", key)
		return
	}

	class, err := domain.ParseClientClass(parts[0])
	if err != nil {
		p.logger.Warn("PolicyProvider: ignoring price key %s: %v", key, err)
		return
	}
	session, err := domain.ParseSessionType(parts[1])
	if err != nil {
		p.logger.Warn("PolicyProvider: ignoring price key %s: %v", key, err)
		return
	}

	price, err := strconv.ParseFloat(value, 64)
	if err != nil || price < 0 {
		p.logger.Warn("PolicyProvider: ignoring price %s=%q", key, value)
		return
	}

	policy.Prices[domain.PriceKey{Class: class, Session: session, Accompanied: len(parts) == 3}] = price
}
