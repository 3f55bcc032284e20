package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
)

// OperatorService covers the operator working queue: claiming orders,
// sending video links, parking orders and flagging refunds.
type OperatorService struct {
	uow      application.UnitOfWork
	orders   application.OrderRepository
	notifier application.Notifier
	logger   *slog.Logger
}

func NewOperatorService(
	uow application.UnitOfWork,
	orders application.OrderRepository,
	notifier application.Notifier,
	logger *slog.Logger,
) *OperatorService {
	return &OperatorService{
		uow:      uow,
		orders:   orders,
		notifier: notifier,
		logger:   logger,
	}
}

// Claim assigns a paid, unassigned order to the acting operator. The check
// and the write happen under one row lock, so exactly one of two concurrent
// claims wins; the loser gets a conflict.
func (s *OperatorService) Claim(ctx context.Context, actor domain.Actor, orderNumber string) (*domain.Order, error) {
	if !actor.CanOperate() {
		return nil, application.NewForbiddenError(domain.NewForbiddenError(actor.Role, "claim orders"))
	}

	var order *domain.Order
	err := withLockRetry(ctx, s.logger, func(ctx context.Context) error {
		return s.uow.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
			o, err := repos.Orders.FindByNumberForUpdate(ctx, orderNumber)
			if err != nil {
				return err
			}
			if err := o.Claim(actor.ID); err != nil {
				return application.NewConflictError(err)
			}
			if err := repos.Orders.Update(ctx, o); err != nil {
				return err
			}
			if err := repos.Audit.Append(ctx, domain.NewAuditEntry(&actor.ID, domain.ActionOrderClaimed, "order", o.Number, nil)); err != nil {
				return err
			}
			order = o
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order claimed", "order", order.Number, "operator_id", actor.ID)
	return order, nil
}

// SendLinks delivers the video links and moves the order to links_sent. An
// unassigned order is claimed implicitly by the sender; an order owned by
// another operator is off limits unless the actor is an admin.
func (s *OperatorService) SendLinks(ctx context.Context, actor domain.Actor, cmd SendLinksCommand) (*domain.Order, error) {
	if !actor.CanOperate() {
		return nil, application.NewForbiddenError(domain.NewForbiddenError(actor.Role, "send links"))
	}
	if cmd.Links == "" {
		return nil, application.NewInvalidInputError(domain.NewMissingRequiredFieldError("video links"))
	}

	var order *domain.Order
	err := withLockRetry(ctx, s.logger, func(ctx context.Context) error {
		return s.uow.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
			o, err := repos.Orders.FindByNumberForUpdate(ctx, cmd.OrderNumber)
			if err != nil {
				return err
			}
			if err := s.checkOwnership(actor, o); err != nil {
				return err
			}
			if err := o.SendLinks(actor.ID, cmd.Links, time.Now()); err != nil {
				return application.NewConflictError(err)
			}
			if err := repos.Orders.Update(ctx, o); err != nil {
				return err
			}
			if err := repos.Audit.Append(ctx, domain.NewAuditEntry(&actor.ID, domain.ActionLinksSent, "order", o.Number, nil)); err != nil {
				return err
			}
			order = o
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(application.NotificationEvent{
		Kind:        application.NotifyLinksSent,
		OrderNumber: order.Number,
		Email:       order.CustomerEmail,
	})
	s.logger.Info("links sent", "order", order.Number, "operator_id", actor.ID)
	return order, nil
}

// RequestInfo parks a processing order while the operator waits on the
// customer.
func (s *OperatorService) RequestInfo(ctx context.Context, actor domain.Actor, orderNumber string) (*domain.Order, error) {
	return s.ownedTransition(ctx, actor, orderNumber, "request info", func(o *domain.Order) error {
		return o.RequestInfo()
	}, "")
}

// ResumeProcessing returns a parked order to the operator queue.
func (s *OperatorService) ResumeProcessing(ctx context.Context, actor domain.Actor, orderNumber string) (*domain.Order, error) {
	return s.ownedTransition(ctx, actor, orderNumber, "resume processing", func(o *domain.Order) error {
		return o.ResumeProcessing()
	}, "")
}

// MarkReady records that the videos are prepared but not yet sent.
func (s *OperatorService) MarkReady(ctx context.Context, actor domain.Actor, orderNumber string) (*domain.Order, error) {
	return s.ownedTransition(ctx, actor, orderNumber, "mark ready", func(o *domain.Order) error {
		return o.MarkReady()
	}, "")
}

// FlagRefund marks the order as needing a partial refund before completion.
func (s *OperatorService) FlagRefund(ctx context.Context, actor domain.Actor, orderNumber, reason string) (*domain.Order, error) {
	if reason == "" {
		return nil, application.NewInvalidInputError(domain.NewMissingRequiredFieldError("refund reason"))
	}
	return s.ownedTransition(ctx, actor, orderNumber, "flag refund", func(o *domain.Order) error {
		return o.FlagRefund(reason)
	}, domain.ActionRefundFlagged)
}

// UnflagRefund clears the refund flag, returning the order to the status
// derived from its own state.
func (s *OperatorService) UnflagRefund(ctx context.Context, actor domain.Actor, orderNumber string) (*domain.Order, error) {
	return s.ownedTransition(ctx, actor, orderNumber, "unflag refund", func(o *domain.Order) error {
		return o.UnflagRefund()
	}, domain.ActionRefundUnflagged)
}

// UpdateComments replaces the free-form order comments. Unlike the legacy
// system this never toggles the refund flag; flagging is its own operation.
func (s *OperatorService) UpdateComments(ctx context.Context, actor domain.Actor, orderNumber, comments string) (*domain.Order, error) {
	if !actor.CanOperate() && !actor.CanManageFinances() {
		return nil, application.NewForbiddenError(domain.NewForbiddenError(actor.Role, "update comments"))
	}

	var order *domain.Order
	err := s.uow.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
		o, err := repos.Orders.FindByNumberForUpdate(ctx, orderNumber)
		if err != nil {
			return err
		}
		o.Comments = &comments
		if err := repos.Orders.Update(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OperatorService) ownedTransition(
	ctx context.Context,
	actor domain.Actor,
	orderNumber, action string,
	mutate func(o *domain.Order) error,
	auditAction string,
) (*domain.Order, error) {
	if !actor.CanOperate() {
		return nil, application.NewForbiddenError(domain.NewForbiddenError(actor.Role, action))
	}

	var order *domain.Order
	err := withLockRetry(ctx, s.logger, func(ctx context.Context) error {
		return s.uow.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
			o, err := repos.Orders.FindByNumberForUpdate(ctx, orderNumber)
			if err != nil {
				return err
			}
			if err := s.checkOwnership(actor, o); err != nil {
				return err
			}
			if err := mutate(o); err != nil {
				return application.NewConflictError(err)
			}
			if err := repos.Orders.Update(ctx, o); err != nil {
				return err
			}
			if auditAction != "" {
				if err := repos.Audit.Append(ctx, domain.NewAuditEntry(&actor.ID, auditAction, "order", o.Number, nil)); err != nil {
					return err
				}
			}
			order = o
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// checkOwnership rejects operators touching orders claimed by someone else.
// Admins bypass the check.
func (s *OperatorService) checkOwnership(actor domain.Actor, order *domain.Order) error {
	if actor.IsAdmin() {
		return nil
	}
	if order.OperatorID != nil && *order.OperatorID != actor.ID {
		return application.NewForbiddenError(domain.NewForbiddenError(actor.Role, "touch another operator's order"))
	}
	return nil
}
