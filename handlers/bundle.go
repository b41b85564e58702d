package handlers

import (
	userRepoPkg "finehero/database/repository/user"
	"finehero/services/billing"
	"finehero/services/defense"
	"finehero/services/fine"
	"finehero/services/legal"
	"finehero/services/user"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	UserRepo userRepoPkg.UserRepository

	User    *UserHandler
	Fine    *FineHandler
	Defense *DefenseHandler
	Billing *BillingHandler
	Legal   *LegalHandler
	Admin   *AdminHandler
}

// NewHandlerBundle wires every handler against its service.
func NewHandlerBundle(
	userRepo userRepoPkg.UserRepository,
	userSvc user.UserService,
	fineSvc fine.FineService,
	defenseSvc defense.DefenseService,
	billingSvc billing.BillingService,
	legalSvc legal.LegalService,
) *HandlerBundle {
	return &HandlerBundle{
		UserRepo: userRepo,
		User:     &UserHandler{UserService: userSvc},
		Fine:     &FineHandler{FineService: fineSvc},
		Defense:  &DefenseHandler{DefenseService: defenseSvc},
		Billing:  &BillingHandler{BillingService: billingSvc},
		Legal:    &LegalHandler{LegalService: legalSvc},
		Admin: &AdminHandler{
			UserService: userSvc,
			FineService: fineSvc,
		},
	}
}
