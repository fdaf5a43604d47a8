package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/JaimeStill/brief/internal/pipeline"
	"github.com/JaimeStill/brief/pkg/graph"
)

func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Print the execution order and detected stages of a graph",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "graph",
				Aliases:  []string{"g"},
				Usage:    "Path to the graph JSON file",
				Required: true,
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			g, err := readGraph(command.String("graph"))
			if err != nil {
				return err
			}

			report, err := pipeline.Validate(g)
			if err := writeJSON(report); err != nil {
				return err
			}
			if err != nil && !errors.Is(err, pipeline.ErrValidation) {
				return err
			}
			if !report.Runnable {
				return cli.Exit("graph is not runnable", 2)
			}
			return nil
		},
	}
}

func readGraph(path string) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}

	var g graph.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("%w: %w", graph.ErrInvalidGraph, err)
	}
	return &g, nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
