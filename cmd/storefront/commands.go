package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/matst80/slask-storefront/pkg/analytics"
	"github.com/matst80/slask-storefront/pkg/common/jsoncompat"
	"github.com/matst80/slask-storefront/pkg/config"
	"github.com/matst80/slask-storefront/pkg/facet"
	"github.com/matst80/slask-storefront/pkg/graph"
	"github.com/matst80/slask-storefront/pkg/messaging"
	"github.com/matst80/slask-storefront/pkg/preferences"
	"github.com/matst80/slask-storefront/pkg/query"
	"github.com/matst80/slask-storefront/pkg/server"
	"github.com/matst80/slask-storefront/pkg/types"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
)

func writeJson(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func resolveCmd() *cobra.Command {
	var validate bool

	cmd := &cobra.Command{
		Use:   "resolve <file>",
		Short: "Print the resolved preferences",
		Long:  "Reads a JSON or YAML preferences document and prints it with every default filled in.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := preferences.LoadFile(args[0])
			if err != nil {
				return err
			}
			if validate {
				if err := preferences.Validate(p); err != nil {
					return err
				}
			}
			return writeJson(cmd.OutOrStdout(), p)
		},
	}

	cmd.Flags().BoolVar(&validate, "validate", false, "Fail when the document has no usable backend")
	return cmd
}

type graphView struct {
	Facets []facet.JsonFacet      `json:"facets"`
	Result []types.FacetId        `json:"result"`
	Edges  []types.DependencyEdge `json:"edges"`
}

func buildGraphView(p *types.Preferences) graphView {
	facets := facet.BuildFacets(p)
	g := graph.BuildEdges(facets, p)
	view := graphView{
		Facets: make([]facet.JsonFacet, 0, len(facets)),
		Result: g.ResultDependencies(),
		Edges:  g.Edges(),
	}
	for _, f := range facets {
		view.Facets = append(view.Facets, facet.JsonFacet{
			FacetConfig: f,
			DependsOn:   g.DependenciesOf(f.Id),
		})
	}
	return view
}

func graphCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "graph <file>",
		Aliases: []string{"facets"},
		Short:   "Print the facets and their dependencies",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := preferences.LoadFile(args[0])
			if err != nil {
				return err
			}
			return writeJson(cmd.OutOrStdout(), buildGraphView(p))
		},
	}
}

func queryCmd() *cobra.Command {
	var (
		text      string
		facetId   string
		strValues []string
		rngValues []string
	)

	cmd := &cobra.Command{
		Use:   "query <file>",
		Short: "Print the backend query for a set of selections",
		Long: `Composes the query the result list, or a single facet with --facet, would send
for the given selections. Selections use the query string format of the web api:

  storefront query prefs.json -q shirt --str color:Red||Blue --rng price:10-50`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := preferences.LoadFile(args[0])
			if err != nil {
				return err
			}
			values := url.Values{"q": {text}, "str": strValues, "rng": rngValues}
			req, err := server.ParseQueryValues(values)
			if err != nil {
				return err
			}
			facets := facet.BuildFacets(p)
			composer := query.NewComposer(facets, graph.BuildEdges(facets, p), p)
			if facetId == "" {
				return writeJson(cmd.OutOrStdout(), composer.ForResults(req.Selections))
			}
			id := types.FacetId(facetId)
			composition, err := composer.Compose(id, req.Selections[id], req.Selections)
			if err != nil {
				return fmt.Errorf("%s: %w", facetId, err)
			}
			return writeJson(cmd.OutOrStdout(), composition)
		},
	}

	cmd.Flags().StringVarP(&text, "query", "q", "", "Search text")
	cmd.Flags().StringVarP(&facetId, "facet", "f", "", "Compose for this facet instead of the result list")
	cmd.Flags().StringArrayVar(&strValues, "str", nil, "Term selection, id:value||value")
	cmd.Flags().StringArrayVar(&rngValues, "rng", nil, "Range selection, id:min-max")
	return cmd
}

func popularCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "popular <file>",
		Short: "Fetch the popular searches of the configured index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := preferences.LoadFile(args[0])
			if err != nil {
				return err
			}
			if err := preferences.Validate(p); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			fetcher := analytics.NewPopularSearchFetcher(nil)
			settings := p.AppbaseSettings
			return writeJson(cmd.OutOrStdout(), fetcher.Fetch(ctx, settings.Index, settings.Credentials, settings.Url))
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	return cmd
}

func publishCmd() *cobra.Command {
	var (
		rabbitUrl  string
		storefront string
	)

	cmd := &cobra.Command{
		Use:   "publish <file>",
		Short: "Publish a preferences document to running storefronts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if rabbitUrl == "" {
				rabbitUrl = cfg.RabbitUrl
			}
			if storefront == "" {
				storefront = cfg.Storefront
			}
			if rabbitUrl == "" {
				return fmt.Errorf("no rabbit url, set --rabbit-url or STOREFRONT_RABBIT_URL")
			}

			p, err := preferences.LoadFile(args[0])
			if err != nil {
				return err
			}
			if err := preferences.Validate(p); err != nil {
				return err
			}
			document, err := jsoncompat.Marshal(p)
			if err != nil {
				return err
			}

			conn, err := amqp.DialConfig(rabbitUrl, amqp.Config{
				Properties: amqp.NewConnectionProperties(),
			})
			if err != nil {
				return fmt.Errorf("connect to rabbit: %w", err)
			}
			defer conn.Close()

			if err := messaging.PublishPreferences(conn, storefront, document); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published preferences for %s\n", storefront)
			return nil
		},
	}

	cmd.Flags().StringVar(&rabbitUrl, "rabbit-url", "", "Broker url")
	cmd.Flags().StringVar(&storefront, "storefront", "", "Storefront name")
	return cmd
}
