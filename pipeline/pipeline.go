package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bkryza/luma-user-setup-example/config"
	"github.com/bkryza/luma-user-setup-example/luma"
	"github.com/bkryza/luma-user-setup-example/onezone"
	"github.com/bkryza/luma-user-setup-example/records"
	"github.com/bkryza/luma-user-setup-example/types"
)

// Pipeline provisions a batch of basic-auth accounts end to end:
//
//	GENERATE -> PROVISION -> HARVEST -> ENROLL -> MAP -> PERSIST
//
// Stages run strictly in order, each consuming the full output of the
// previous one; the first error halts the run. There is no retry and no
// rollback: a failed run leaves already-created remote state behind, and a
// repeated run over the same range fails at account creation on the
// duplicate usernames.
type Pipeline struct {
	cfg   config.Config
	runID string

	panel *onezone.PanelClient
	zone  *onezone.Client
	luma  *luma.Client
	store *records.Store

	log *logrus.Entry
}

// New builds a pipeline from a validated configuration. The store may be nil
// to skip ledger recording.
func New(cfg config.Config, store *records.Store) *Pipeline {
	runID := uuid.New().String()

	return &Pipeline{
		cfg:   cfg,
		runID: runID,
		panel: onezone.NewPanelClient(cfg.OnepanelURL, cfg.PanelAuth, cfg.InsecureSkipVerify),
		zone:  onezone.NewClient(cfg.OnezoneURL, cfg.AdminAuth, cfg.InsecureSkipVerify),
		luma:  luma.NewClient(cfg.LumaURL, nil, cfg.InsecureSkipVerify),
		store: store,
		log:   logrus.WithField("run_id", runID),
	}
}

func (p *Pipeline) Run(ctx context.Context) error {
	logins := GenerateLogins(p.cfg.LowUID, p.cfg.HighUID, p.cfg.LoginPrefix)
	p.log.Infof("generated %d logins for UID range [%d, %d)", len(logins), p.cfg.LowUID, p.cfg.HighUID)

	if err := p.provisionAccounts(ctx, logins); err != nil {
		return fmt.Errorf("provision accounts: %w", err)
	}

	accounts, err := p.harvestCredentials(ctx, logins)
	if err != nil {
		return fmt.Errorf("harvest credentials: %w", err)
	}

	if err := p.enrollInSpace(ctx, accounts); err != nil {
		return fmt.Errorf("enroll in space: %w", err)
	}

	if err := p.registerStorageMappings(ctx, accounts); err != nil {
		return fmt.Errorf("register storage mappings: %w", err)
	}

	if err := p.persist(ctx, accounts); err != nil {
		return fmt.Errorf("persist accounts: %w", err)
	}

	return nil
}

func (p *Pipeline) provisionAccounts(ctx context.Context, logins []types.LoginRecord) error {
	for _, record := range logins {
		p.log.Infof("adding user %s", record.Login)

		if err := p.panel.CreateUser(ctx, record.Login, p.cfg.UserPassword); err != nil {
			return fmt.Errorf("user %q: %w", record.Login, err)
		}
	}

	return nil
}

func (p *Pipeline) harvestCredentials(ctx context.Context, logins []types.LoginRecord) ([]types.Account, error) {
	accounts := make([]types.Account, 0, len(logins))

	for _, record := range logins {
		userID, err := p.zone.GetUserID(ctx, record.Login, p.cfg.UserPassword)
		if err != nil {
			return nil, fmt.Errorf("user %q: %w", record.Login, err)
		}

		p.log.Infof("generating user %s access token", record.Login)

		token, err := p.zone.CreateClientToken(ctx, record.Login, p.cfg.UserPassword)
		if err != nil {
			return nil, fmt.Errorf("user %q: %w", record.Login, err)
		}

		accounts = append(accounts, types.Account{
			UID:    record.UID,
			Login:  record.Login,
			UserID: userID,
			Token:  token,
		})
	}

	return accounts, nil
}

func (p *Pipeline) enrollInSpace(ctx context.Context, accounts []types.Account) error {
	for _, account := range accounts {
		p.log.Infof("adding user %s to space %s", account.Login, p.cfg.SpaceID)

		if err := p.zone.AddSpaceUser(ctx, p.cfg.SpaceID, account.UserID); err != nil {
			return fmt.Errorf("user %q: %w", account.Login, err)
		}
	}

	return nil
}

func (p *Pipeline) registerStorageMappings(ctx context.Context, accounts []types.Account) error {
	if len(accounts) == 0 {
		return nil
	}

	// The default group mapping must be in place before per-user
	// registration on storages that apply group inheritance.
	err := p.luma.SetSpaceDefaultGroup(ctx, p.cfg.SpaceID, []luma.GroupMapping{
		{GID: p.cfg.DefaultSpaceGID, StorageName: p.cfg.StorageName},
	})
	if err != nil {
		return fmt.Errorf("default group for space %q: %w", p.cfg.SpaceID, err)
	}

	for _, account := range accounts {
		p.log.Infof("adding user %s credentials to LUMA", account.Login)

		lumaID, err := p.luma.AddUserMapping(ctx, account.UserID)
		if err != nil {
			return fmt.Errorf("user %q: %w", account.Login, err)
		}

		err = p.luma.SetUserCredentials(ctx, lumaID, []luma.StorageCredentials{{
			StorageName: p.cfg.StorageName,
			Type:        p.cfg.StorageType,
			UID:         account.UID,
			GID:         account.UID,
		}})
		if err != nil {
			return fmt.Errorf("user %q: %w", account.Login, err)
		}
	}

	return nil
}

func (p *Pipeline) persist(ctx context.Context, accounts []types.Account) error {
	path := filepath.Join(p.cfg.OutputDir, records.AccountsFileName(p.cfg.LoginPrefix))

	if err := records.WriteAccounts(path, accounts); err != nil {
		return err
	}
	p.log.Infof("wrote %d accounts to %s", len(accounts), path)

	if p.store != nil {
		if err := p.store.SaveAccounts(ctx, p.runID, accounts); err != nil {
			return fmt.Errorf("ledger: %w", err)
		}
	}

	return nil
}
