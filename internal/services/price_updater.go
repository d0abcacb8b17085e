package services

import (
	"log"
	"sync"
	"time"

	"github.com/AgusMolinaCode/Portfolio_Api.git/internal/models"
	"github.com/robfig/cron/v3"
)

// Interfaces de los colaboradores que necesita el ciclo de actualización.
// Se inyectan en el constructor para poder probar el ciclo sin red ni base
// de datos reales.

type StockRepositoryInterface interface {
	GetStocksByUser(userID string) ([]models.Stock, error)
	UpdatePrices(userID string, stocks []models.Stock) error
}

type SettingsRepositoryInterface interface {
	GetSettings(userID string) (*models.Settings, error)
}

type UserRepositoryInterface interface {
	GetAllUsers() ([]models.User, error)
	GetUserById(id string) (*models.User, error)
}

type EventRepositoryInterface interface {
	SaveEvent(event *models.RebalanceEvent) error
}

type QuoteFetcher interface {
	GetStockQuote(code string) (StockQuote, error)
	GetStockName(code string) (string, error)
}

// PriceUpdater es el orquestador del ciclo de actualización: refresca los
// precios de todos los usuarios según el cronograma configurado, guarda la
// foto actualizada y decide si corresponde notificar.
type PriceUpdater struct {
	schedule     string
	cron         *cron.Cron
	stockRepo    StockRepositoryInterface
	settingsRepo SettingsRepositoryInterface
	userRepo     UserRepositoryInterface
	eventRepo    EventRepositoryInterface
	fetcher      QuoteFetcher
	notifier     Notifier

	mutex           sync.Mutex
	isRunning       bool
	lastUpdated     time.Time
	cachedSummaries map[string]*models.PortfolioSummary
}

// NewPriceUpdater crea el orquestador. El cronograma usa sintaxis cron
// estándar de cinco campos (ej: "0 10 * * 1-5" para días hábiles a las 10:00).
func NewPriceUpdater(
	schedule string,
	stockRepo StockRepositoryInterface,
	settingsRepo SettingsRepositoryInterface,
	userRepo UserRepositoryInterface,
	eventRepo EventRepositoryInterface,
	fetcher QuoteFetcher,
	notifier Notifier,
) *PriceUpdater {
	return &PriceUpdater{
		schedule:        schedule,
		stockRepo:       stockRepo,
		settingsRepo:    settingsRepo,
		userRepo:        userRepo,
		eventRepo:       eventRepo,
		fetcher:         fetcher,
		notifier:        notifier,
		cachedSummaries: make(map[string]*models.PortfolioSummary),
	}
}

// Start programa el ciclo de actualización según el cronograma
func (p *PriceUpdater) Start() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.isRunning {
		return nil
	}

	p.cron = cron.New()
	if _, err := p.cron.AddFunc(p.schedule, p.RefreshAllUsers); err != nil {
		return err
	}
	p.cron.Start()
	p.isRunning = true

	log.Printf("Ciclo de actualización de precios programado: %s", p.schedule)
	return nil
}

// Stop detiene el ciclo de actualización
func (p *PriceUpdater) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.isRunning {
		return
	}

	p.cron.Stop()
	p.isRunning = false
	log.Printf("Ciclo de actualización de precios detenido")
}

// RefreshAllUsers ejecuta un ciclo de actualización para todos los usuarios
func (p *PriceUpdater) RefreshAllUsers() {
	users, err := p.userRepo.GetAllUsers()
	if err != nil {
		log.Printf("Error al obtener usuarios: %v", err)
		return
	}

	for _, user := range users {
		if err := p.RefreshUser(user); err != nil {
			log.Printf("Error al actualizar precios para usuario %s: %v", user.ID, err)
		}
	}

	log.Printf("Actualización de precios completada para %d usuarios", len(users))
}

// RefreshUserByID busca el usuario y ejecuta su ciclo de actualización.
// Lo usa el endpoint de actualización manual.
func (p *PriceUpdater) RefreshUserByID(userID string) error {
	user, err := p.userRepo.GetUserById(userID)
	if err != nil {
		return err
	}
	return p.RefreshUser(*user)
}

// RefreshUser ejecuta un ciclo completo para un usuario: lanza todas las
// consultas de precio y nombre en paralelo, espera a que terminen, aplica
// solo los campos válidos sobre la foto en memoria y la persiste en una sola
// transacción. Recién sobre esa foto completa corre la evaluación de
// rebalanceo; nunca se evalúa ni se guarda una lista actualizada a medias.
func (p *PriceUpdater) RefreshUser(user models.User) error {
	stocks, err := p.stockRepo.GetStocksByUser(user.ID)
	if err != nil {
		return err
	}

	settings, err := p.settingsRepo.GetSettings(user.ID)
	if err != nil {
		return err
	}

	quotes := make([]StockQuote, len(stocks))
	names := make([]string, len(stocks))

	var wg sync.WaitGroup
	for i := range stocks {
		wg.Add(1)
		go func(i int, code string) {
			defer wg.Done()
			if quote, err := p.fetcher.GetStockQuote(code); err == nil {
				quotes[i] = quote
			}
			if name, err := p.fetcher.GetStockName(code); err == nil {
				names[i] = name
			}
		}(i, stocks[i].Code)
	}
	wg.Wait()

	// Aplicar resultados: precio 0 y nombre vacío son centinelas de
	// "consulta fallida" y no sobreescriben el valor vigente
	for i := range stocks {
		if quotes[i].Price > 0 {
			stocks[i].CurrentPrice = quotes[i].Price
			stocks[i].DailyVariation = quotes[i].DailyVariation
		}
		if names[i] != "" {
			stocks[i].Name = names[i]
		}
	}

	if err := p.stockRepo.UpdatePrices(user.ID, stocks); err != nil {
		// Si el guardado falla se abandona el ciclo sin notificar
		return err
	}

	summary := BuildPortfolioSummary(stocks, settings)

	p.mutex.Lock()
	p.cachedSummaries[user.ID] = summary
	p.lastUpdated = time.Now()
	p.mutex.Unlock()

	p.notifyIfNeeded(user, stocks, settings)
	return nil
}

// notifyIfNeeded decide cuál de las dos notificaciones corresponde emitir.
// Son excluyentes: si la configuración de objetivos es inválida se avisa eso
// y se ignora el resultado del evaluador durante este ciclo.
func (p *PriceUpdater) notifyIfNeeded(user models.User, stocks []models.Stock, settings *models.Settings) {
	totalAssets := TotalAssets(stocks, settings.Cash)

	if !IsTargetConfigValid(stocks) {
		combined := CombinedTargetPercentage(stocks)
		if err := p.notifier.NotifyMisconfigured(user, combined); err != nil {
			log.Printf("Error al notificar configuración inválida para %s: %v", user.ID, err)
		}
		p.saveEvent(&models.RebalanceEvent{
			ID:             models.GenerateUUID(),
			UserID:         user.ID,
			Type:           models.EventMisconfigured,
			CombinedTarget: combined,
			CreatedAt:      time.Now(),
		})
		return
	}

	if OverallNeedsRebalancing(stocks, totalAssets, settings.Threshold) {
		maxDeviation := MaxDeviation(stocks, totalAssets)
		if err := p.notifier.NotifyRebalanceNeeded(user, maxDeviation); err != nil {
			log.Printf("Error al notificar rebalanceo para %s: %v", user.ID, err)
		}
		p.saveEvent(&models.RebalanceEvent{
			ID:           models.GenerateUUID(),
			UserID:       user.ID,
			Type:         models.EventRebalanceNeeded,
			MaxDeviation: maxDeviation,
			CreatedAt:    time.Now(),
		})
	}
}

func (p *PriceUpdater) saveEvent(event *models.RebalanceEvent) {
	if err := p.eventRepo.SaveEvent(event); err != nil {
		log.Printf("Error al registrar evento %s para %s: %v", event.Type, event.UserID, err)
	}
}

// GetCachedSummary devuelve el último resumen calculado para un usuario
func (p *PriceUpdater) GetCachedSummary(userID string) (*models.PortfolioSummary, bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	summary, exists := p.cachedSummaries[userID]
	return summary, exists
}

// GetLastUpdated devuelve la última vez que se completó un ciclo
func (p *PriceUpdater) GetLastUpdated() time.Time {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.lastUpdated
}
