package events

import (
	"crypto/rand"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
)

type Type string

const (
	TypeTransactionCreated Type = "transaction_created"
	TypeTransactionUpdated Type = "transaction_updated"
	TypeTransactionDeleted Type = "transactionDeleted"
	TypeExpensesUpdated    Type = "expenses_updated"
	TypeProjectUpdated     Type = "project_updated"
	TypeAccountUpdated     Type = "account_updated"
	TypeSaleCreated        Type = "sale_created"
)

type Topic string

const (
	TopicTransactions Topic = "transactions"
	TopicAccounts     Topic = "accounts"
	TopicProjects     Topic = "projects"
	TopicExpenses     Topic = "expenses"
	TopicShop         Topic = "shop"
)

var AllTopics = []Topic{TopicTransactions, TopicAccounts, TopicProjects, TopicExpenses, TopicShop}

func (t Topic) Valid() bool {
	for _, candidate := range AllTopics {
		if candidate == t {
			return true
		}
	}
	return false
}

// Event notifies subscribers that data they may be showing has changed.
type Event struct {
	ID            string         `json:"id"`
	Type          Type           `json:"type"`
	Topic         Topic          `json:"topic"`
	ProjectID     string         `json:"projectId,omitempty"`
	TransactionID string         `json:"transactionId,omitempty"`
	AccountIDs    []string       `json:"accountIds,omitempty"`
	Payload       map[string]any `json:"payload,omitempty"`
	OccurredAt    time.Time      `json:"occurredAt"`
}

// New builds an event stamped with a fresh ULID.
func New(typ Type, topic Topic) Event {
	now := time.Now().UTC()
	return Event{
		ID:         ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		Type:       typ,
		Topic:      topic,
		OccurredAt: now,
	}
}

// WithProject sets the project id when non-zero.
func (e Event) WithProject(id int64) Event {
	if id != 0 {
		e.ProjectID = strconv.FormatInt(id, 10)
	}
	return e
}

func (e Event) WithTransaction(id int64) Event {
	if id != 0 {
		e.TransactionID = strconv.FormatInt(id, 10)
	}
	return e
}

func (e Event) WithAccounts(ids ...int64) Event {
	for _, id := range ids {
		if id == 0 {
			continue
		}
		e.AccountIDs = append(e.AccountIDs, strconv.FormatInt(id, 10))
	}
	return e
}
