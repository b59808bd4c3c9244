package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/protobuf/reflect/protoregistry"

	"github.com/jhump/protogeneric/protoobject"
	"github.com/jhump/protogeneric/protoresolve"
)

const (
	flagProto          = "proto"
	flagImportPath     = "import-path"
	flagType           = "type"
	flagIndent         = "indent"
	flagOmitAbsent     = "omit-absent"
	flagDiscardUnknown = "discard-unknown"
	flagVerbose        = "verbose"
)

type options struct {
	protoFiles     []string
	importPaths    []string
	typeName       string
	indent         string
	omitAbsent     bool
	discardUnknown bool
	verbose        bool

	logger *zap.Logger
}

// envDefaults supplies values for flags that were not given on the command
// line.
type envDefaults struct {
	ProtoFiles  []string `env:"PROTOCONV_PROTO"       envSeparator:","`
	ImportPaths []string `env:"PROTOCONV_IMPORT_PATH" envSeparator:":"`
	Verbose     bool     `env:"PROTOCONV_VERBOSE"`
}

func (o *options) applyEnv(cmd *cobra.Command) error {
	var defaults envDefaults
	if err := env.Parse(&defaults); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	flags := cmd.Flags()
	if !flags.Changed(flagProto) && len(defaults.ProtoFiles) > 0 {
		o.protoFiles = defaults.ProtoFiles
	}
	if !flags.Changed(flagImportPath) && len(defaults.ImportPaths) > 0 {
		o.importPaths = defaults.ImportPaths
	}
	if !flags.Changed(flagVerbose) {
		o.verbose = o.verbose || defaults.Verbose
	}
	return nil
}

// newRootCommand builds the command tree. If logger is nil, one is created
// when a command runs: a development logger with --verbose, else a no-op.
func newRootCommand(logger *zap.Logger) *cobra.Command {
	opts := &options{logger: logger}
	cmd := &cobra.Command{
		Use:   "protoconv [sub-command]",
		Short: "Convert protobuf messages to and from JSON and msgpack",
		Long: `protoconv reads a message from stdin and writes it to stdout in another format.

Message types are compiled from the .proto files named with --proto. Imports
are resolved against the --import-path directories. The well-known types are
always available, and --proto may be omitted when only those are used.

When not given as flags, --proto, --import-path and --verbose are read from
PROTOCONV_PROTO (comma separated), PROTOCONV_IMPORT_PATH (colon separated)
and PROTOCONV_VERBOSE.

Messages are converted through their generic objects: every field is rendered,
fields that are not set are written as null (or left out with --omit-absent),
enums are written by name and maps as lists of key/value entries.`,
		Example: `protoconv to-json --proto image.proto --type test.ImageRotateRequest < req.bin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.applyEnv(cmd); err != nil {
				return err
			}
			if opts.logger != nil {
				return nil
			}
			if !opts.verbose {
				opts.logger = zap.NewNop()
				return nil
			}
			logger, err := zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			opts.logger = logger
			return nil
		},
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}

	flags := cmd.PersistentFlags()
	flags.StringArrayVar(&opts.protoFiles, flagProto, nil, "a .proto file that defines the message type, may be repeated")
	flags.StringArrayVarP(&opts.importPaths, flagImportPath, "I", nil, "a directory to search for .proto files and their imports, may be repeated")
	flags.StringVarP(&opts.typeName, flagType, "t", "", "the fully-qualified name of the message type")
	flags.BoolVarP(&opts.verbose, flagVerbose, "v", false, "log schema loading and class creation to stderr")

	cmd.AddCommand(newToCommand(opts, jsonFormat))
	cmd.AddCommand(newFromCommand(opts, jsonFormat))
	cmd.AddCommand(newToCommand(opts, msgpackFormat))
	cmd.AddCommand(newFromCommand(opts, msgpackFormat))
	return cmd
}

// registry compiles the requested files and returns a registry that resolves
// message types from them, falling back to the types linked into the binary.
func (o *options) registry(cmd *cobra.Command) (*protoobject.Registry, error) {
	if o.typeName == "" {
		return nil, fmt.Errorf("--%s is required", flagType)
	}
	var resolver protoregistry.MessageTypeResolver = protoresolve.GlobalTypes
	if len(o.protoFiles) > 0 {
		files, err := protoresolve.Compile(cmd.Context(), protoresolve.CompileOptions{ImportPaths: o.importPaths}, o.protoFiles...)
		if err != nil {
			return nil, err
		}
		o.logger.Debug("compiled schema",
			zap.Strings("files", o.protoFiles),
			zap.Int("registered", files.NumFiles()))
		resolver = protoresolve.Combine(protoresolve.FromFiles(files), protoresolve.GlobalTypes)
	}
	return protoobject.NewRegistry(
		protoobject.WithResolver(resolver),
		protoobject.WithLogger(o.logger),
	), nil
}
