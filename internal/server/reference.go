package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/smallbiznis/bizledger/internal/account/domain"
	"github.com/smallbiznis/bizledger/internal/cashflow"
	"github.com/smallbiznis/bizledger/internal/events"
	projectdomain "github.com/smallbiznis/bizledger/internal/project/domain"
)

type transactionTypeView struct {
	Type   cashflow.TransactionType `json:"type"`
	Sign   int                      `json:"sign"`
	Bucket cashflow.Bucket          `json:"bucket"`
}

// GetReference lists the enums forms need, with the canonical sign and bucket
// of every transaction type.
func (s *Server) GetReference(c *gin.Context) {
	txTypes := make([]transactionTypeView, 0, len(cashflow.KnownTypes))
	for _, t := range cashflow.KnownTypes {
		classification := cashflow.Classify(t)
		txTypes = append(txTypes, transactionTypeView{
			Type:   t,
			Sign:   classification.Sign,
			Bucket: classification.Bucket,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"accountTypes": []accountdomain.AccountType{
			accountdomain.AccountTypeBank,
			accountdomain.AccountTypeCash,
			accountdomain.AccountTypeMobileMoney,
		},
		"currencies":       accountdomain.SupportedCurrencies,
		"defaultCurrency":  accountdomain.DefaultCurrency,
		"transactionTypes": txTypes,
		"projectStatuses": []projectdomain.Status{
			projectdomain.StatusPlanned,
			projectdomain.StatusInProgress,
			projectdomain.StatusCompleted,
			projectdomain.StatusOnHold,
			projectdomain.StatusCancelled,
		},
		"eventTopics": events.AllTopics,
	}})
}
