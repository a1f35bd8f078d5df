// Package keeper periodically liquidates every loan that has become liquidatable.
package keeper

import (
	"context"
	"errors"
	"time"

	"collateral-ledger/internal/domain/loan"
	"collateral-ledger/internal/infrastructure/logger"
	"collateral-ledger/internal/infrastructure/metrics"
	"collateral-ledger/internal/usecase/ledger"
	"collateral-ledger/internal/usecase/lifecycle"

	"github.com/bsm/redislock"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	moduleName = "keeper"
	// LockKey makes one sweep run at a time across instances.
	LockKey  = "ledger:liquidation-sweep"
	pageSize = 200
)

type ActiveLoans interface {
	ListActiveLoansView(ctx context.Context, limit, offset int) ([]ledger.LoanView, error)
}

type Liquidator interface {
	Liquidate(ctx context.Context, loanID, liquidatorID string) (*lifecycle.LiquidationResult, error)
}

type Config struct {
	Schedule     string
	LiquidatorID string
	LockTTL      time.Duration
}

type Keeper struct {
	cfg     Config
	cron    *cron.Cron
	locker  *redislock.Client
	loans   ActiveLoans
	liq     Liquidator
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

// SweepResult counts what one sweep did.
type SweepResult struct {
	LockHeld   bool
	Candidates int
	Liquidated int
	// lost a race: repaid or liquidated elsewhere, or healthy again
	Skipped int
	Failed  int
}

func New(cfg Config, locker *redislock.Client, loans ActiveLoans, liq Liquidator, m *metrics.Metrics, log logrus.FieldLogger) *Keeper {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 5 * time.Minute
	}
	cronLogger := cron.PrintfLogger(log)
	return &Keeper{
		cfg:     cfg,
		cron:    cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger))),
		locker:  locker,
		loans:   loans,
		liq:     liq,
		metrics: m,
		log:     log.WithField("module", moduleName),
	}
}

// Start schedules the sweep. It does nothing when no schedule is configured.
func (k *Keeper) Start() error {
	if k.cfg.Schedule == "" {
		k.log.Info("liquidation keeper disabled")
		return nil
	}
	if _, err := k.cron.AddFunc(k.cfg.Schedule, k.run); err != nil {
		return err
	}
	k.log.WithField("schedule", k.cfg.Schedule).Info("scheduled liquidation sweep")
	k.cron.Start()
	return nil
}

// Stop stops scheduling; the returned context is done once a running sweep finishes.
func (k *Keeper) Stop() context.Context {
	return k.cron.Stop()
}

func (k *Keeper) run() {
	res, err := k.Sweep(context.Background())
	if err != nil {
		logger.LogError(k.log, moduleName, "run", "liquidation sweep failed", nil, err)
		return
	}
	if res.LockHeld {
		k.log.WithFields(logrus.Fields{
			"candidates": res.Candidates,
			"liquidated": res.Liquidated,
			"skipped":    res.Skipped,
			"failed":     res.Failed,
		}).Info("liquidation sweep done")
	}
}

// Sweep liquidates every currently liquidatable loan, unless another instance holds the sweep lock.
func (k *Keeper) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	lock, err := k.locker.Obtain(ctx, LockKey, k.cfg.LockTTL, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		k.metrics.KeeperSweep("locked")
		return res, nil
	}
	if err != nil {
		k.metrics.KeeperSweep("error")
		return res, err
	}
	res.LockHeld = true
	defer func() {
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			k.log.Warn("failed to release sweep lock: " + err.Error())
		}
	}()

	// collect first: liquidating while paging would shift the offsets
	candidates, err := k.candidates(ctx)
	if err != nil {
		k.metrics.KeeperSweep("error")
		return res, err
	}
	res.Candidates = len(candidates)

	for _, loanID := range candidates {
		_, err := k.liq.Liquidate(ctx, loanID, k.cfg.LiquidatorID)
		switch {
		case err == nil:
			res.Liquidated++
		case errors.Is(err, loan.ErrNotLiquidatable), errors.Is(err, loan.ErrLoanNotActive):
			res.Skipped++
		default:
			res.Failed++
			logger.LogError(k.log, moduleName, "Sweep", "liquidation failed", map[string]any{"loan_id": loanID}, err)
		}
	}
	if res.Failed > 0 {
		k.metrics.KeeperSweep("partial")
	} else {
		k.metrics.KeeperSweep("ok")
	}
	return res, nil
}

func (k *Keeper) candidates(ctx context.Context) ([]string, error) {
	var out []string
	for offset := 0; ; offset += pageSize {
		page, err := k.loans.ListActiveLoansView(ctx, pageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, v := range page {
			if v.Derived != nil && v.Derived.IsLiquidatable {
				out = append(out, v.LoanID)
			}
		}
		if len(page) < pageSize {
			return out, nil
		}
	}
}
