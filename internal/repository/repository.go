package repository

import (
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	User         UserRepository
	Session      SessionRepository
	Invite       InviteRepository
	Notification NotificationRepository
	Menu         MenuRepository
	Order        OrderRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Session:      NewSessionRepository(db),
		Invite:       NewInviteRepository(db),
		Notification: NewNotificationRepository(db),
		Menu:         NewMenuRepository(db),
		Order:        NewOrderRepository(db),
	}
}
