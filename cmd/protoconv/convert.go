package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/jhump/protogeneric/generic"
	"github.com/jhump/protogeneric/genericjson"
	"github.com/jhump/protogeneric/genericmsgpack"
	"github.com/jhump/protogeneric/protoobject"
)

// format is a rendering of generic objects that a message can be converted
// to and from.
type format struct {
	name      string
	title     string
	text      bool
	marshal   func(obj *protoobject.Object, o *options) ([]byte, error)
	unmarshal func(data []byte, class *protoobject.Class, o *options) (generic.Value, error)
}

var jsonFormat = &format{
	name:  "json",
	title: "JSON",
	text:  true,
	marshal: func(obj *protoobject.Object, o *options) ([]byte, error) {
		return genericjson.Marshal(obj, &genericjson.Config{Indent: o.indent, OmitAbsent: o.omitAbsent})
	},
	unmarshal: func(data []byte, class *protoobject.Class, o *options) (generic.Value, error) {
		v := generic.Absent(class)
		err := genericjson.Unmarshal(data, &v, &genericjson.Config{DiscardUnknown: o.discardUnknown})
		return v, err
	},
}

var msgpackFormat = &format{
	name:  "msgpack",
	title: "msgpack",
	marshal: func(obj *protoobject.Object, o *options) ([]byte, error) {
		return genericmsgpack.Marshal(obj, &genericmsgpack.Config{OmitAbsent: o.omitAbsent})
	},
	unmarshal: func(data []byte, class *protoobject.Class, o *options) (generic.Value, error) {
		v := generic.Absent(class)
		err := genericmsgpack.Unmarshal(data, &v, &genericmsgpack.Config{DiscardUnknown: o.discardUnknown})
		return v, err
	},
}

func newToCommand(opts *options, f *format) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "to-" + f.name,
		Short: fmt.Sprintf("Convert a binary message read from stdin to %s", f.title),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := opts.registry(cmd)
			if err != nil {
				return err
			}
			class := reg.GetOrCreate(protoreflect.FullName(opts.typeName))
			msg, err := class.NewMessage()
			if err != nil {
				return err
			}
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			if err := proto.Unmarshal(data, msg.Interface()); err != nil {
				return fmt.Errorf("failed to parse %s: %w", class.Name(), err)
			}
			obj, err := reg.Decode(msg)
			if err != nil {
				return err
			}
			out, err := f.marshal(obj, opts)
			if err != nil {
				return err
			}
			if f.text {
				out = append(out, '\n')
			}
			opts.logger.Debug("converted message",
				zap.String("class", class.Name()),
				zap.String("format", f.name),
				zap.Int("in", len(data)),
				zap.Int("out", len(out)))
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}
	if f.text {
		cmd.Flags().StringVar(&opts.indent, flagIndent, "", "indent nested values with this string, such as two spaces")
	}
	cmd.Flags().BoolVar(&opts.omitAbsent, flagOmitAbsent, false, "leave out fields that are not set instead of writing null")
	return cmd
}

func newFromCommand(opts *options, f *format) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "from-" + f.name,
		Short: fmt.Sprintf("Convert %s read from stdin to a binary message", f.title),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := opts.registry(cmd)
			if err != nil {
				return err
			}
			class := reg.GetOrCreate(protoreflect.FullName(opts.typeName))
			msg, err := class.NewMessage()
			if err != nil {
				return err
			}
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			v, err := f.unmarshal(data, class, opts)
			if err != nil {
				return err
			}
			if !v.IsAbsent() {
				obj, ok := v.Object().(*protoobject.Object)
				if !ok {
					return fmt.Errorf("%s decoded to %T, not a message object", f.title, v.Object())
				}
				if err := reg.Encode(obj, msg); err != nil {
					return err
				}
			}
			out, err := proto.MarshalOptions{Deterministic: true}.Marshal(msg.Interface())
			if err != nil {
				return fmt.Errorf("failed to serialize %s: %w", class.Name(), err)
			}
			opts.logger.Debug("converted message",
				zap.String("class", class.Name()),
				zap.String("format", f.name),
				zap.Int("in", len(data)),
				zap.Int("out", len(out)))
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}
	cmd.Flags().BoolVar(&opts.discardUnknown, flagDiscardUnknown, false, "ignore object keys that do not name a field")
	return cmd
}
