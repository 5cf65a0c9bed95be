package main

import (
	"context"
	"fmt"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/cogland/cog/build"
	"github.com/cogland/cog/format"
	"github.com/cogland/cog/ir"
)

func main() {
	demoCmd := &cli.Command{
		Name:        "demo",
		Description: "build a sample graph (diamond, loop) and print it",
		Action:      demoAct,
		Args:        cli.Args{},
	}

	app := &cli.Command{
		Name:        "cog",
		Description: "cog is a tool for inspecting ssa graph construction",
		Commands: []*cli.Command{
			demoCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func demoAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		g, err := demo(ctx, a)
		if err != nil {
			return errors.Wrap(err, "build %v", a)
		}

		fmt.Printf("%s", format.Graph(nil, g))
	}

	return nil
}

func demo(ctx context.Context, name string) (*ir.Graph, error) {
	switch name {
	case "diamond":
		return diamond(ctx)
	case "loop":
		return loop(ctx)
	}

	return nil, errors.New("unknown graph: %v", name)
}

// diamond branches on a comparison, runs one side through a nested
// subgraph, and merges through two phi blocks.
func diamond(ctx context.Context) (*ir.Graph, error) {
	return build.Build(ctx, func(s *build.Session) {
		left := s.DeclPlainBlock(0)
		right := s.DeclPlainBlock(0)
		merge := s.DeclPlainBlock(1)
		exit := s.DeclPlainBlock(1)

		a := s.EmitConstInt32(0)
		b := s.EmitConstInt32(10)
		c := s.EmitEq(a, b)
		s.Branch(c, left, nil, right, nil)

		s.DefBlock(left)
		one := s.EmitConstInt32(1)
		d := s.EmitAdd(a, one)
		s.Jump(merge, []ir.Value{d})

		s.DefBlock(right)
		s.DefSubgraph(func(s *build.Session) {
			inner := s.DeclPlainBlock(0)

			e := s.EmitAdd(a, b)
			f := s.EmitConstInt32(9)
			q := s.EmitEq(e, f)
			s.Branch(q, merge, []ir.Value{f}, inner, nil)

			s.DefBlock(inner)
			one := s.EmitConstInt32(1)
			i := s.EmitAdd(f, one)
			s.Jump(exit, []ir.Value{i})
		})

		s.DefBlock(merge)
		h := s.EmitPhi(ir.Int32)
		s.Jump(exit, []ir.Value{h})

		s.DefBlock(exit)
		j := s.EmitPhi(ir.Int32)
		s.Ret(j)
	})
}

// loop counts from 0 to 10 through a loop head with one phi and a
// back edge from the body.
func loop(ctx context.Context) (*ir.Graph, error) {
	return build.Build(ctx, func(s *build.Session) {
		head := s.DeclLoopHead(1)

		a := s.EmitConstInt32(0)
		b := s.EmitConstInt32(10)
		s.Jump(head, []ir.Value{a})

		s.DefLoop(head, func(s *build.Session) {
			body := s.DeclPlainBlock(0)
			exit := s.DeclPlainBlock(0)

			c := s.EmitPhi(ir.Int32)
			d := s.EmitLt(c, b)
			s.Branch(d, body, nil, exit, nil)

			s.DefBlock(body)
			one := s.EmitConstInt32(1)
			e := s.EmitAdd(c, one)
			s.Jump(head, []ir.Value{e})

			s.DefBlock(exit)
			s.Ret(c)
		})
	})
}
