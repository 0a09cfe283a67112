package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/bizledger/internal/audit/domain"
	"github.com/smallbiznis/bizledger/internal/audit/masking"
	obscontext "github.com/smallbiznis/bizledger/internal/observability/context"
	"github.com/smallbiznis/bizledger/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var knownTargets = map[auditdomain.Target]struct{}{
	auditdomain.TargetAccount:     {},
	auditdomain.TargetTransaction: {},
	auditdomain.TargetProject:     {},
	auditdomain.TargetCustomer:    {},
	auditdomain.TargetVendor:      {},
	auditdomain.TargetEmployee:    {},
	auditdomain.TargetExpense:     {},
	auditdomain.TargetProduct:     {},
	auditdomain.TargetSale:        {},
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  auditdomain.Repository
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, tx *gorm.DB, entry auditdomain.Entry) error {
	if _, ok := knownTargets[entry.Target]; !ok {
		return auditdomain.ErrInvalidTarget
	}
	action := strings.ToLower(strings.TrimSpace(entry.Action))
	if !validAction(action) || !strings.HasPrefix(action, string(entry.Target)+".") {
		return auditdomain.ErrInvalidAction
	}

	row := auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		ActorType:  string(auditdomain.ActorTypeSystem),
		Action:     action,
		TargetType: string(entry.Target),
		Metadata:   datatypes.JSONMap(masking.MaskSensitive(entry.Metadata)),
		CreatedAt:  time.Now().UTC(),
	}
	if entry.TargetID != 0 {
		row.TargetID = stringPtr(entry.TargetID.String())
	}
	if actorID := obscontext.ActorIDFromContext(ctx); actorID != "" {
		row.ActorType = string(auditdomain.ActorTypeOperator)
		row.ActorID = stringPtr(actorID)
	}
	row.RequestID = stringPtr(obscontext.RequestIDFromContext(ctx))
	row.IPAddress = stringPtr(obscontext.ClientIPFromContext(ctx))
	row.UserAgent = stringPtr(obscontext.UserAgentFromContext(ctx))

	db := tx
	if db == nil {
		db = s.db
	}
	if err := s.repo.Insert(ctx, db, &row); err != nil {
		s.log.Warn("failed to write audit log",
			zap.String("action", action),
			zap.String("target_type", row.TargetType),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidTimeRange
	}

	filter := auditdomain.ListFilter{
		TargetType: strings.ToLower(strings.TrimSpace(req.TargetType)),
		TargetID:   strings.TrimSpace(req.TargetID),
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		Limit:      req.Pagination.Size(),
	}
	if action := strings.ToLower(strings.TrimSpace(req.Action)); action != "" {
		if prefix, ok := strings.CutSuffix(action, ".*"); ok {
			if !validAction(prefix) {
				return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidAction
			}
			filter.ActionPrefix = prefix + "."
		} else {
			if !validAction(action) {
				return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidAction
			}
			filter.Action = action
		}
	}

	pos, err := pagination.ParseToken(req.PageToken)
	if err != nil {
		return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidPageToken
	}
	if pos != nil {
		filter.Cursor = &auditdomain.AuditCursor{ID: pos.ID, CreatedAt: pos.CreatedAt}
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return auditdomain.ListAuditLogResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, filter.Limit, func(item *auditdomain.AuditLog) string {
		return pagination.Token(item.ID, item.CreatedAt)
	})

	logs := make([]auditdomain.AuditLog, 0, len(items))
	for _, item := range items {
		if item != nil {
			logs = append(logs, *item)
		}
	}
	return auditdomain.ListAuditLogResponse{PageInfo: *pageInfo, AuditLogs: logs}, nil
}

// validAction accepts dot separated lowercase segments such as "sale.create".
func validAction(action string) bool {
	if action == "" {
		return false
	}
	for _, segment := range strings.Split(action, ".") {
		if segment == "" {
			return false
		}
		for _, r := range segment {
			if (r < 'a' || r > 'z') && r != '-' {
				return false
			}
		}
	}
	return true
}

func stringPtr(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
