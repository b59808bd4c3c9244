package protoresolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/bufbuild/protocompile"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
)

// CompileOptions controls how Compile locates .proto sources.
type CompileOptions struct {
	// ImportPaths are directories searched for files and their imports. If
	// empty, file names are opened relative to the working directory.
	ImportPaths []string
	// Sources provides file contents by path. Entries here take precedence
	// over files found on disk.
	Sources map[string]string
}

// Compile parses and links the named .proto files, along with everything
// they import, and returns them registered in a new protoregistry.Files.
// The standard imports (google/protobuf/*.proto) are always available.
func Compile(ctx context.Context, opts CompileOptions, files ...string) (*protoregistry.Files, error) {
	if len(files) == 0 {
		return nil, errors.New("no files to compile")
	}
	var resolver protocompile.Resolver = &protocompile.SourceResolver{
		ImportPaths: opts.ImportPaths,
	}
	if len(opts.Sources) > 0 {
		resolver = protocompile.CompositeResolver{
			&protocompile.SourceResolver{
				Accessor: protocompile.SourceAccessorFromMap(opts.Sources),
			},
			resolver,
		}
	}
	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(resolver),
	}
	results, err := compiler.Compile(ctx, files...)
	if err != nil {
		return nil, err
	}
	var reg protoregistry.Files
	for _, fd := range results {
		if err := registerFile(&reg, fd); err != nil {
			return nil, err
		}
	}
	return &reg, nil
}

// registerFile registers fd after all of its transitive imports.
func registerFile(reg *protoregistry.Files, fd protoreflect.FileDescriptor) error {
	if _, err := reg.FindFileByPath(fd.Path()); err == nil {
		return nil
	}
	imports := fd.Imports()
	for i, length := 0, imports.Len(); i < length; i++ {
		if err := registerFile(reg, imports.Get(i).FileDescriptor); err != nil {
			return err
		}
	}
	if err := reg.RegisterFile(fd); err != nil {
		return fmt.Errorf("failed to register %q: %w", fd.Path(), err)
	}
	return nil
}
