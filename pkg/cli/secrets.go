package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/m-mizutani/actions/pkg/domain"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

func nameFlag(usage string) cli.Flag {
	return &cli.StringFlag{
		Name:     "name",
		Aliases:  []string{"n"},
		Usage:    usage,
		Required: true,
	}
}

func newSecretsCommand() *cli.Command {
	return &cli.Command{
		Name:  "secrets",
		Usage: "Interact with workflow secrets",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List repository secrets",
				Flags:  []cli.Flag{repositoryFlag()},
				Action: withHandler(secretsListAction),
			},
			{
				Name:   "get",
				Usage:  "Show when a secret was created and updated",
				Flags:  []cli.Flag{repositoryFlag(), nameFlag("Secret name")},
				Action: withHandler(secretsGetAction),
			},
			{
				Name:   "public-key",
				Usage:  "Get the public key used for creating secrets",
				Flags:  []cli.Flag{repositoryFlag()},
				Action: withHandler(secretsPublicKeyAction),
			},
			{
				Name:  "create",
				Usage: "Create or update a secret",
				Flags: []cli.Flag{
					repositoryFlag(),
					nameFlag("Secret name"),
					&cli.StringFlag{
						Name:  "value",
						Usage: "Secret value (prompted for when omitted)",
					},
					&cli.StringFlag{
						Name:  "value-file",
						Usage: "Read the secret value from a file, - for stdin",
					},
				},
				Action: withHandler(secretsCreateAction),
			},
			{
				Name:   "delete",
				Usage:  "Delete a secret",
				Flags:  []cli.Flag{repositoryFlag(), nameFlag("Name of secret to delete")},
				Action: withHandler(secretsDeleteAction),
			},
		},
	}
}

func secretsListAction(ctx context.Context, cmd *cli.Command, h *handler) error {
	repo, err := h.repository(ctx)
	if err != nil {
		return err
	}

	p, err := h.actions.Secrets(repo)
	if err != nil {
		return err
	}

	t := newTable("Name", "Updated").withStyle(boldFirst)
	for secret := range p.Items(ctx) {
		t.add(secret.Name, secret.UpdatedAt.UTC().Format("2006-01-02 15:04:05"))
	}
	if err := p.Err(); err != nil {
		return err
	}
	return t.render(h.out, h.config.Format)
}

func secretsGetAction(ctx context.Context, cmd *cli.Command, h *handler) error {
	repo, err := h.repository(ctx)
	if err != nil {
		return err
	}

	secret, err := h.actions.GetSecret(ctx, repo, cmd.String("name"))
	if err != nil {
		return err
	}

	t := newTable("Name", "Created", "Updated").withStyle(boldFirst)
	t.add(secret.Name,
		secret.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		secret.UpdatedAt.UTC().Format("2006-01-02 15:04:05"),
	)
	return t.render(h.out, h.config.Format)
}

func secretsPublicKeyAction(ctx context.Context, cmd *cli.Command, h *handler) error {
	repo, err := h.repository(ctx)
	if err != nil {
		return err
	}

	key, err := h.actions.PublicKey(ctx, repo)
	if err != nil {
		return err
	}
	return writeLine(h.out, key.Key)
}

func secretsCreateAction(ctx context.Context, cmd *cli.Command, h *handler) error {
	repo, err := h.repository(ctx)
	if err != nil {
		return err
	}

	name := cmd.String("name")
	value, err := readSecretValue(cmd.String("value"), cmd.String("value-file"), os.Stdin, errOutput(cmd))
	if err != nil {
		return err
	}

	if err := h.actions.CreateSecret(ctx, repo, name, value); err != nil {
		return err
	}
	return writeLine(h.out, fmt.Sprintf("Secret %s is stored", name))
}

func secretsDeleteAction(ctx context.Context, cmd *cli.Command, h *handler) error {
	repo, err := h.repository(ctx)
	if err != nil {
		return err
	}

	name := cmd.String("name")
	if err := h.actions.DeleteSecret(ctx, repo, name); err != nil {
		return err
	}
	return writeLine(h.out, fmt.Sprintf("Secret %s is deleted", name))
}

// readSecretValue takes the value from the flag, then the value file, then
// an interactive prompt with echo disabled, then piped stdin. Trailing
// newlines from files and pipes are dropped.
func readSecretValue(value, file string, stdin *os.File, prompt io.Writer) (string, error) {
	if value != "" {
		return value, nil
	}

	var data []byte
	var err error
	switch {
	case file != "" && file != "-":
		data, err = os.ReadFile(file)
		if err != nil {
			return "", domain.ErrConfiguration.Wrap(goerr.Wrap(err, "failed to read secret value file", goerr.V("path", file)))
		}

	case file == "" && term.IsTerminal(int(stdin.Fd())):
		fmt.Fprint(prompt, "Secret value: ")
		data, err = term.ReadPassword(int(stdin.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", goerr.Wrap(err, "failed to read secret value")
		}

	default:
		data, err = io.ReadAll(stdin)
		if err != nil {
			return "", goerr.Wrap(err, "failed to read secret value from stdin")
		}
	}

	v := strings.TrimRight(string(data), "\r\n")
	if v == "" {
		return "", domain.ErrConfiguration.Wrap(goerr.New("secret value is empty"))
	}
	return v, nil
}

func writeLine(w io.Writer, line string) error {
	if _, err := fmt.Fprintln(w, line); err != nil {
		return goerr.Wrap(err, "failed to write output")
	}
	return nil
}
