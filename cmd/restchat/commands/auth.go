package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"restchat/internal/errs"
)

// login <username> <password>: exchange credentials for a token and store it.
func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Log in to the chat service",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext()
			defer cancel()

			token, err := appCtx.API.Token(ctx, args[0], args[1])
			if err != nil {
				if errors.Is(err, errs.ErrUnauthorized) {
					return fmt.Errorf("login failed: %v", err)
				}
				return err
			}
			if err := appCtx.Session.Login(token); err != nil {
				return err
			}
			fmt.Println("logged in as", args[0])
			return nil
		},
	}
}

// logout: clear the stored session. Never contacts the server.
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appCtx.Session.Logout(); err != nil {
				return err
			}
			fmt.Println("logged out")
			return nil
		},
	}
}

// register <username> <email> <password>: create an account.
func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <username> <email> <password>",
		Short: "Create a new account",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext()
			defer cancel()

			user, err := appCtx.Mutations.RegisterUser(ctx, args[0], args[1], args[2])
			if err != nil {
				var dup *errs.DuplicateFieldError
				if errors.As(err, &dup) {
					return fmt.Errorf("registration rejected: %s", dup.Error())
				}
				return err
			}
			fmt.Printf("registered %s (id %d); log in with: restchat login %s <password>\n",
				user.Username, user.ID, user.Username)
			return nil
		},
	}
}

// whoami: show the identity of the active session.
func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext()
			defer cancel()

			me, err := currentIdentity(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%s (id %d, %s), member since %s\n",
				me.Username, me.ID, me.Email, me.CreatedAt.Format("2006-01-02"))
			if exp, ok := appCtx.Session.ExpiresAt(); ok {
				fmt.Println("session expires", exp.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}
