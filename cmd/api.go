package main

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/desertthunder/homedeck/internal/services"
	"github.com/desertthunder/homedeck/internal/shared"
	"github.com/urfave/cli/v3"
)

// api returns the raw API service for the --service flag.
func (r *Runner) api(cmd *cli.Command) (*services.APIService, error) {
	name := cmd.String("service")
	client, ok := r.clients[name]
	if !ok {
		names := slices.Sorted(maps.Keys(r.clients))
		return nil, fmt.Errorf("%w: service %q, expected one of %s", shared.ErrInvalidFlag, name, strings.Join(names, ", "))
	}
	return services.NewAPIService(client), nil
}

// APIGet makes a direct GET request and prints the response body.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	return r.apiCall(cmd, "GET", func(api *services.APIService, path string, _ []byte) (*services.APIResponse, error) {
		return api.Get(ctx, path)
	})
}

// APIPost makes a direct POST request with a JSON body.
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	return r.apiCall(cmd, "POST", func(api *services.APIService, path string, data []byte) (*services.APIResponse, error) {
		return api.Post(ctx, path, data)
	})
}

// APIPut makes a direct PUT request with a JSON body.
func (r *Runner) APIPut(ctx context.Context, cmd *cli.Command) error {
	return r.apiCall(cmd, "PUT", func(api *services.APIService, path string, data []byte) (*services.APIResponse, error) {
		return api.Put(ctx, path, data)
	})
}

// APIDelete makes a direct DELETE request.
func (r *Runner) APIDelete(ctx context.Context, cmd *cli.Command) error {
	return r.apiCall(cmd, "DELETE", func(api *services.APIService, path string, _ []byte) (*services.APIResponse, error) {
		return api.Delete(ctx, path)
	})
}

type apiFunc func(api *services.APIService, path string, data []byte) (*services.APIResponse, error)

func (r *Runner) apiCall(cmd *cli.Command, method string, call apiFunc) error {
	api, err := r.api(cmd)
	if err != nil {
		return err
	}

	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var data []byte
	if cmd.IsSet("data") {
		data = []byte(cmd.String("data"))
		var jsonTest any
		if err := json.Unmarshal(data, &jsonTest); err != nil {
			return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, err)
		}
	}

	r.logger.Info(method+" request", "service", cmd.String("service"), "path", path)

	resp, err := call(api, path, data)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrApplication, resp.StatusCode, strings.TrimSpace(string(resp.Body)))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, cmd.Bool("pretty"))
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

func apiFlags(body bool) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "service",
			Aliases: []string{"s"},
			Usage:   "Backend to call: links, entries, devices or downloads",
			Value:   "links",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON responses",
			Value: true,
		},
	}
	if body {
		flags = append(flags, &cli.StringFlag{
			Name:     "data",
			Aliases:  []string{"d"},
			Usage:    "JSON body to send",
			Required: true,
		})
	}
	return flags
}

func pathArg() []cli.Argument {
	return []cli.Argument{&cli.StringArg{Name: "path"}}
}

// apiCommand handles direct API calls for debugging the backends
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls to a backend, prints the raw response",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Direct GET",
				Arguments: pathArg(),
				Flags:     apiFlags(false),
				Action:    r.APIGet,
			},
			{
				Name:      "post",
				Usage:     "Direct POST with JSON body",
				Arguments: pathArg(),
				Flags:     apiFlags(true),
				Action:    r.APIPost,
			},
			{
				Name:      "put",
				Usage:     "Direct PUT with JSON body",
				Arguments: pathArg(),
				Flags:     apiFlags(true),
				Action:    r.APIPut,
			},
			{
				Name:      "delete",
				Usage:     "Direct DELETE",
				Arguments: pathArg(),
				Flags:     apiFlags(false),
				Action:    r.APIDelete,
			},
		},
	}
}
