package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"stablepay.backend/internal/domain/entities"
	domainerrors "stablepay.backend/internal/domain/errors"
	"stablepay.backend/internal/interfaces/http/response"
	"stablepay.backend/pkg/address"
)

// NetworkHandler serves the static chain catalog and address validation.
type NetworkHandler struct{}

// NewNetworkHandler creates a new network handler
func NewNetworkHandler() *NetworkHandler {
	return &NetworkHandler{}
}

type networkView struct {
	Network          string   `json:"network"`
	DisplayName      string   `json:"displayName"`
	Tokens           []string `json:"tokens"`
	FeeHint          string   `json:"feeHint"`
	ConfirmationTime string   `json:"confirmationTime"`
	Recommended      bool     `json:"recommended"`
}

// ListNetworks enumerates supported networks and their tokens
// GET /api/networks
func (h *NetworkHandler) ListNetworks(c *gin.Context) {
	views := make([]networkView, 0, len(entities.ChainConfigs))
	for _, network := range []entities.Network{entities.NetworkArbitrum, entities.NetworkEthereum, entities.NetworkTron} {
		cfg := entities.ChainConfigs[network]
		tokens := make([]string, 0, len(cfg.Contracts))
		for _, token := range []entities.Token{entities.TokenUSDT, entities.TokenUSDC} {
			if _, ok := cfg.Contracts[token]; ok {
				tokens = append(tokens, string(token))
			}
		}
		views = append(views, networkView{
			Network:          string(network),
			DisplayName:      cfg.DisplayName,
			Tokens:           tokens,
			FeeHint:          cfg.FeeHint,
			ConfirmationTime: cfg.ConfirmationTime,
			Recommended:      cfg.Recommended,
		})
	}
	response.Success(c, http.StatusOK, gin.H{"networks": views})
}

type validateAddressInput struct {
	Network string `json:"network" binding:"required"`
	Address string `json:"address" binding:"required"`
}

// ValidateAddress checks the address shape for a network
// POST /api/validate-address
func (h *NetworkHandler) ValidateAddress(c *gin.Context) {
	var input validateAddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}

	network, ok := entities.ParseNetwork(input.Network)
	if !ok {
		response.Error(c, domainerrors.BadRequest(domainerrors.CodeInvalidNetwork, "unknown network"))
		return
	}

	valid := false
	normalized := ""
	if network.IsEVM() {
		if address.IsEVM(input.Address) {
			valid = true
			normalized = address.NormalizeEVM(input.Address)
		}
	} else if address.IsTron(input.Address) {
		valid = true
		normalized = input.Address
	}

	body := gin.H{"network": string(network), "valid": valid}
	if valid {
		body["normalized"] = normalized
	}
	response.Success(c, http.StatusOK, body)
}
