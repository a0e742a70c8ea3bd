package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readworld/internal/account"
	"github.com/mrlokans/readworld/internal/entities"
	"github.com/mrlokans/readworld/internal/state"
)

type AccountController struct {
	service *account.Service
	store   *state.Store
}

func NewAccountController(service *account.Service, store *state.Store) *AccountController {
	return &AccountController{service: service, store: store}
}

type accountResponse struct {
	LoggedIn bool          `json:"loggedIn"`
	User     *account.User `json:"user,omitempty"`
	Plan     entities.Plan `json:"plan"`
}

func (ac *AccountController) respond(c *gin.Context, user *account.User) {
	var plan entities.Plan
	ac.store.View(func(st *entities.UserState) { plan = st.Plan })
	c.JSON(http.StatusOK, accountResponse{LoggedIn: user != nil, User: user, Plan: plan})
}

// GetAccount handles GET /api/account
func (ac *AccountController) GetAccount(c *gin.Context) {
	user, _ := ac.service.Current(c.Request.Context())
	ac.respond(c, user)
}

// Register handles POST /api/account/register
func (ac *AccountController) Register(c *gin.Context) {
	var req account.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := ac.service.Register(c.Request.Context(), req)
	if err != nil {
		respondDomainError(c, err, "register")
		return
	}
	ac.respond(c, user)
}

// Login handles POST /api/account/login
func (ac *AccountController) Login(c *gin.Context) {
	var req account.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := ac.service.Login(c.Request.Context(), req)
	if err != nil {
		respondDomainError(c, err, "login")
		return
	}
	ac.respond(c, user)
}

// Logout handles POST /api/account/logout
func (ac *AccountController) Logout(c *gin.Context) {
	if err := ac.service.Logout(c.Request.Context()); err != nil {
		respondDomainError(c, err, "logout")
		return
	}
	ac.respond(c, nil)
}

// Upgrade handles POST /api/account/upgrade
func (ac *AccountController) Upgrade(c *gin.Context) {
	user, err := ac.service.Upgrade(c.Request.Context())
	if err != nil {
		respondDomainError(c, err, "upgrade")
		return
	}
	ac.respond(c, user)
}

// Downgrade handles POST /api/account/downgrade
func (ac *AccountController) Downgrade(c *gin.Context) {
	user, err := ac.service.Downgrade(c.Request.Context())
	if err != nil {
		respondDomainError(c, err, "downgrade")
		return
	}
	ac.respond(c, user)
}
