package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"restchat/internal/domain"
	"restchat/internal/permission"
)

func chatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chats",
		Short: "List and manage chats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext()
			defer cancel()

			snap, err := await(appCtx.Queries.Chats(ctx))
			if err != nil {
				return err
			}
			list := snap.Value.(domain.ChatList)
			for _, c := range list.Chats {
				fmt.Printf("%4d  %-30s  owner %s\n", c.ID, c.Name, c.Owner.Username)
			}
			fmt.Printf("%d chat(s)\n", list.Meta.Count)
			return nil
		},
	}
	cmd.AddCommand(chatsCreateCmd(), chatsRenameCmd(), chatsShowCmd())
	return cmd
}

func chatsCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a chat owned by you",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext()
			defer cancel()

			chat, err := appCtx.Mutations.CreateChat(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("created chat %q (id %d)\n", chat.Name, chat.ID)
			return nil
		},
	}
}

func chatsRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <chat-id> <name>",
		Short: "Rename a chat you own",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext()
			defer cancel()

			chatID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("bad chat id %q", args[0])
			}

			me, err := currentIdentity(ctx)
			if err != nil {
				return err
			}
			snap, err := await(appCtx.Queries.Chat(ctx, chatID))
			if err != nil {
				return err
			}
			detail := snap.Value.(domain.ChatDetail)
			if !permission.CanManageChat(me, detail.Chat) {
				return fmt.Errorf("only the owner (%s) can rename this chat", detail.Chat.Owner.Username)
			}

			chat, err := appCtx.Mutations.RenameChat(ctx, chatID, args[1])
			if err != nil {
				return err
			}
			fmt.Printf("renamed chat %d to %q\n", chat.ID, chat.Name)
			return nil
		},
	}
}

func chatsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <chat-id>",
		Short: "Show a chat's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext()
			defer cancel()

			chatID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("bad chat id %q", args[0])
			}
			snap, err := await(appCtx.Queries.ChatWithMembers(ctx, chatID))
			if err != nil {
				return err
			}
			detail := snap.Value.(domain.ChatDetail)
			fmt.Printf("%s (id %d), created %s, %d message(s)\n",
				detail.Chat.Name, detail.Chat.ID,
				detail.Chat.CreatedAt.Format("2006-01-02"), detail.Meta.MessageCount)
			for _, u := range detail.Users {
				if u.ID == detail.Chat.Owner.ID {
					fmt.Printf("  %s (owner)\n", u.Username)
				} else {
					fmt.Printf("  %s\n", u.Username)
				}
			}
			return nil
		},
	}
}
