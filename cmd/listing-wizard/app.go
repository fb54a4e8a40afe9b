package main

import (
	"context"
	"io"
	"os"

	"github.com/goliatone/go-errors"
	wizard "github.com/goliatone/go-wizard"
	"github.com/goliatone/go-wizard/api"
	"github.com/goliatone/go-wizard/api/rest"
	"github.com/goliatone/go-wizard/config"
	"github.com/goliatone/go-wizard/flow"
	"github.com/goliatone/go-wizard/logging"
	"github.com/goliatone/go-wizard/payload"
	"github.com/goliatone/go-wizard/reconcile"
	"github.com/goliatone/go-wizard/runner"
	"github.com/goliatone/go-wizard/submit"
)

const ErrCodeUnknownWizard = "UNKNOWN_WIZARD"

// app carries what every command needs.
type app struct {
	ctx    context.Context
	cfg    config.Config
	logger flow.Logger
	out    io.Writer
	client *rest.Client
	steps  flow.StepSet
}

func newApp(ctx context.Context, g Globals, out, logOut io.Writer, lookup func(string) (string, bool)) (*app, error) {
	opts := []config.Option{config.WithEnvFiles(g.EnvFile...)}
	if lookup != nil {
		opts = append(opts, config.WithLookup(lookup))
	}
	cfg, err := config.Load(g.Config, opts...)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
	}

	logger := logging.New(logOut, cfg.Log.Level, g.LogJSON)

	steps, err := loadSteps(cfg.StepsFile)
	if err != nil {
		return nil, err
	}

	client, err := rest.New(cfg.API.BaseURL,
		rest.WithTimeout(cfg.API.Timeout),
		rest.WithToken(cfg.API.Token),
		rest.WithUserAgent(cfg.API.UserAgent),
		rest.WithMediaOpener(rest.FileOpener{Root: cfg.API.MediaRoot}),
		rest.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	return &app{
		ctx:    ctx,
		cfg:    cfg,
		logger: logger,
		out:    out,
		client: client,
		steps:  steps,
	}, nil
}

func loadSteps(path string) (flow.StepSet, error) {
	if path == "" {
		return wizard.DefaultStepSet()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return flow.StepSet{}, errors.Wrap(err, errors.CategoryBadInput, "read steps file "+path).
			WithTextCode(config.ErrCodeConfigRead)
	}
	return flow.ParseStepSet(raw)
}

func parseKind(s string) (api.Kind, error) {
	switch kind := api.Kind(s); kind {
	case api.KindProperty, api.KindApartment:
		return kind, nil
	}
	return "", errors.New("unknown wizard "+s, errors.CategoryBadInput).
		WithTextCode(ErrCodeUnknownWizard).
		WithMetadata(map[string]any{"wizard": s})
}

func (a *app) strategy() runner.RetryStrategy {
	return runner.ExponentialBackoffStrategy{
		Base:   a.cfg.Submit.BackoffBase,
		Factor: 2,
		Max:    a.cfg.Submit.BackoffMax,
	}
}

func (a *app) openLedger() (*reconcile.Ledger, error) {
	if a.cfg.Reconcile.LedgerPath == "" {
		return reconcile.NewLedger(), nil
	}
	return reconcile.OpenLedger(a.cfg.Reconcile.LedgerPath)
}

func (a *app) sessionOptions(ledger *reconcile.Ledger) []wizard.Option {
	opts := []wizard.Option{
		wizard.WithLogger(a.logger),
		wizard.WithStepSet(a.steps),
		wizard.WithRetries(a.cfg.Submit.Retries),
		wizard.WithRetryStrategy(a.strategy()),
	}
	if ledger != nil {
		opts = append(opts, wizard.WithRecorder(ledger))
	}
	return opts
}

// reconciler builds orchestrators that record into ledger, so a retry that
// fails again updates its entry.
func (a *app) reconciler(ledger *reconcile.Ledger) *reconcile.Reconciler {
	opts := []submit.Option{
		submit.WithLogger(a.logger),
		submit.WithRecorder(ledger),
		submit.WithRetries(a.cfg.Submit.Retries),
		submit.WithRetryStrategy(a.strategy()),
	}
	return reconcile.NewReconciler(ledger,
		reconcile.WithLogger(a.logger),
		reconcile.WithMaxAttempts(a.cfg.Reconcile.MaxAttempts),
		reconcile.WithResumer(api.KindProperty, submit.New(submit.PropertyTarget{API: a.client.Properties()}, opts...)),
		reconcile.WithResumer(api.KindApartment, submit.New(submit.ApartmentTarget{API: a.client.Apartments()}, opts...)),
	)
}

// session is the kind-independent view of a wizard session the commands
// work with.
type session interface {
	Kind() api.Kind
	ID() string
	Steps() flow.Steps
	Fill(values map[string]any) error
	Validate() flow.Result
	Payload() payload.Result
	Submit(ctx context.Context) (submit.Outcome, error)
	Pending() (submit.Partial, bool)
}

// openSession starts a session of kind, fetching entity id first when set,
// and loads the draft file into it.
func (a *app) openSession(kind api.Kind, file draftFile, id string, ledger *reconcile.Ledger) (session, error) {
	opts := a.sessionOptions(ledger)

	var (
		s   session
		err error
	)
	switch kind {
	case api.KindProperty:
		var ps *wizard.PropertySession
		if id != "" {
			ps, err = wizard.OpenPropertyForEdit(a.ctx, a.client.Properties(), id, opts...)
		} else {
			ps, err = wizard.NewPropertySession(a.ctx, a.client.Properties(), opts...)
		}
		if err == nil {
			err = ps.ImportMedia(file.Media, file.RemoveMedia...)
			s = ps
		}
	case api.KindApartment:
		var as *wizard.ApartmentSession
		if id != "" {
			as, err = wizard.OpenApartmentForEdit(a.ctx, a.client.Apartments(), id, opts...)
		} else {
			as, err = wizard.NewApartmentSession(a.ctx, a.client.Apartments(), opts...)
		}
		if err == nil {
			err = as.ImportMedia(file.Media, file.RemoveMedia...)
			s = as
		}
	default:
		_, err = parseKind(string(kind))
	}
	if err != nil {
		return nil, err
	}
	if err := s.Fill(file.Fields); err != nil {
		return nil, err
	}
	return s, nil
}
