package memory

import (
	"context"
	"strings"

	"github.com/m04kA/RoomBookingService/internal/domain"
	clientRepo "github.com/m04kA/RoomBookingService/internal/infra/storage/client"
)

// ClientRepository клиенты и участники в памяти
type ClientRepository struct {
	s *Store
}

// GetByEmail ищет клиента по email без учёта регистра
func (r *ClientRepository) GetByEmail(ctx context.Context, email string) (*domain.Client, error) {
	var result *domain.Client
	needle := strings.ToLower(strings.TrimSpace(email))
	err := r.s.with(ctx, func(st *state) error {
		for _, c := range st.clients {
			if c.Email == needle {
				cp := *c
				result = &cp
				return nil
			}
		}
		return clientRepo.ErrClientNotFound
	})
	return result, err
}

// Create создает клиента, email уникален
func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	err := r.s.with(ctx, func(st *state) error {
		for _, existing := range st.clients {
			if existing.Email == c.Email {
				return clientRepo.ErrClientExists
			}
		}
		c.ID = st.id()
		c.CreatedAt = r.s.now()
		cp := *c
		st.clients[c.ID] = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetPersonByName ищет участника аккаунта по имени без учёта регистра
func (r *ClientRepository) GetPersonByName(ctx context.Context, clientID int64, name string) (*domain.Person, error) {
	var result *domain.Person
	needle := strings.ToLower(strings.TrimSpace(name))
	err := r.s.with(ctx, func(st *state) error {
		for _, p := range st.persons {
			if p.ClientID == clientID && strings.ToLower(p.Name) == needle {
				cp := *p
				result = &cp
				return nil
			}
		}
		return clientRepo.ErrPersonNotFound
	})
	return result, err
}

// CreatePerson создает участника сеанса
func (r *ClientRepository) CreatePerson(ctx context.Context, p *domain.Person) (*domain.Person, error) {
	err := r.s.with(ctx, func(st *state) error {
		p.ID = st.id()
		p.Name = strings.TrimSpace(p.Name)
		p.CreatedAt = r.s.now()
		cp := *p
		st.persons[p.ID] = &cp
		return nil
	})
	return p, err
}
