package main

/*
Risk Calculator CLI
===================

Sizes a leveraged crypto position so that hitting the stop-loss loses a fixed
percent of the account, then prints what to enter on the exchange.

Unset numeric flags fall back to the RISK_DEFAULTS_* environment values, which
default to the classic example: $1000 account, 2% risk, 75% max margin, 125x,
entry 100, stop-loss 97.
*/

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ducminhle1904/crypto-risk-calculator/cmd/common"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/calculator"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/config"
	calcerrors "github.com/ducminhle1904/crypto-risk-calculator/internal/errors"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/exchange/adapters"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/form"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/logger"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/risk"
	"github.com/ducminhle1904/crypto-risk-calculator/pkg/reporting"
)

const appName = "risk-calc"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// options holds the parsed command line
type options struct {
	common  *common.CommonFlags
	fields  form.Fields
	symbol  string
	testnet bool
	output  string
	json    bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{common: common.RegisterCommonFlags(fs)}

	fs.StringVar(&opts.fields.AccountSize, "account", "", "Account size in USD")
	fs.StringVar(&opts.fields.RiskPercent, "risk", "", "Risk per trade in percent of the account")
	fs.StringVar(&opts.fields.MaxMarginPercent, "max-margin", "", "Max share of the account used as margin, in percent")
	fs.StringVar(&opts.fields.MaxLeverage, "max-leverage", "", "Max leverage (whole number, decimals are truncated)")
	fs.StringVar(&opts.fields.EntryPrice, "entry", "", "Entry price")
	fs.StringVar(&opts.fields.SLPrice, "sl", "", "Stop-loss price")
	fs.StringVar(&opts.symbol, "symbol", "", "Bybit symbol; caps leverage at the instrument limit (e.g. BTCUSDT)")
	fs.BoolVar(&opts.testnet, "testnet", false, "Use Bybit testnet for the symbol lookup")
	fs.StringVar(&opts.output, "output", "", "Export the result to a .json, .csv or .xlsx file")
	fs.BoolVar(&opts.json, "json", false, "Print the result as JSON instead of a table")

	common.NewUsageFormatter(appName, "position size, leverage and margin from account risk").
		AddExample(appName+" -account 5000 -risk 1 -entry 64000 -sl 62500", "Long BTC with 1% risk").
		AddExample(appName+" -entry 3000 -sl 3090 -symbol ETHUSDT", "Short ETH capped at the Bybit leverage limit").
		AddExample(appName+" -output results/trade.xlsx", "Export the default example to Excel").
		Install(fs)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	validator := common.NewFlagValidator().
		ValidateExclusive("json", opts.json, "silent", *opts.common.Silent)
	if err := validator.GetError(); err != nil {
		return nil, err
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 2
	}

	if *opts.common.Version {
		common.PrintVersion(stdout, appName)
		return 0
	}

	cli := opts.common.NewCLILogger(stdout)
	if opts.json {
		// keep stdout machine readable
		cli = opts.common.NewCLILogger(stderr)
	}

	cfg, err := config.LoadConfig(*opts.common.EnvFile)
	if err != nil {
		calcErr := calcerrors.NewConfigurationError("cli", "load_config", err)
		cli.Error("%v", calcErr)
		return calcErr.ExitCode()
	}

	level := cfg.Logging.Level
	if *opts.common.Verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, Production: cfg.IsProduction(), File: cfg.Logging.File})
	if err != nil {
		cli.Error("failed to initialize logger: %v", err)
		return 2
	}
	defer log.Sync()

	calcOpts := []calculator.Option{calculator.WithLogger(log)}
	if opts.symbol != "" {
		factory := adapters.NewFactory()
		adapterCfg := cfg.ExchangeAdapterConfig()
		adapterCfg.Testnet = adapterCfg.Testnet || opts.testnet
		provider, err := factory.CreateLimitsProvider(adapterCfg)
		if err != nil {
			calcErr := calcerrors.NewConfigurationError("cli", "exchange", err)
			cli.Error("%v", calcErr)
			return calcErr.ExitCode()
		}
		cli.Debug("looking up %s leverage limits on %s %s", opts.symbol, adapterCfg.Name, factory.Environment(adapterCfg))
		calcOpts = append(calcOpts, calculator.WithLimitsProvider(provider))
	}

	fields := form.Merge(opts.fields, cfg.DefaultFields())
	calc, err := calculator.New(calcOpts...).CalculateFields(ctx, opts.symbol, fields)
	if err != nil {
		return reportError(cli, log, err)
	}

	if calc.ExchangeLimitsError != "" {
		cli.Warn("could not fetch %s leverage limits, using %dx: %s", calc.Symbol, calc.Input.MaxLeverage, calc.ExchangeLimitsError)
	}

	if opts.json {
		data, err := reporting.NewDefaultJSONReporter().Format(calc)
		if err != nil {
			return reportError(cli, log, err)
		}
		fmt.Fprintln(stdout, string(data))
	} else if !*opts.common.Silent {
		reporting.NewDefaultConsoleReporter(!*opts.common.NoEmojis).Print(stdout, calc)
	}

	if opts.output != "" {
		if err := reporting.Export(calc, opts.output); err != nil {
			return reportError(cli, log, err)
		}
		cli.Success("Result saved to %s", opts.output)
	}

	return 0
}

// reportError prints every invalid field, or the categorized error, and returns the exit code
func reportError(cli *common.Logger, log *zap.Logger, err error) int {
	calcErr := calcerrors.Categorize(err, "cli", "calculate")

	if calcErr.Category == calcerrors.ErrorCategoryValidation {
		for _, e := range flattenErrors(err) {
			var invalid *risk.InvalidInputError
			if errors.As(e, &invalid) {
				cli.Error("-%s: %s", flagName(invalid.Field), invalid.Error())
			}
		}
	} else {
		cli.Error("%v", calcErr)
		log.Error("calculation failed", zap.String("category", string(calcErr.Category)), zap.Error(err))
		if calcErr.IsRetryable() {
			cli.Info("the failure may be temporary, try again")
		}
	}

	return calcErr.ExitCode()
}

func flattenErrors(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

// flagName maps an input field to the flag that sets it
func flagName(field string) string {
	switch field {
	case risk.FieldAccountSize:
		return "account"
	case risk.FieldRiskPercent:
		return "risk"
	case risk.FieldMaxMarginPercent:
		return "max-margin"
	case risk.FieldMaxLeverage:
		return "max-leverage"
	case risk.FieldEntryPrice:
		return "entry"
	case risk.FieldSLPrice:
		return "sl"
	default:
		return field
	}
}
