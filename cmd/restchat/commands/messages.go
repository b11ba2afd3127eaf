package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"restchat/internal/domain"
	"restchat/internal/permission"
)

func messagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages <chat-id>",
		Short: "Read and write a chat's messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext()
			defer cancel()

			chatID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("bad chat id %q", args[0])
			}
			snap, err := await(appCtx.Queries.Messages(ctx, chatID))
			if err != nil {
				return err
			}
			list := snap.Value.(domain.MessageList)
			for _, m := range list.Messages {
				fmt.Printf("%4d  %s  <%s> %s\n",
					m.ID, m.CreatedAt.Local().Format("15:04"), m.User.Username, m.Text)
			}
			return nil
		},
	}
	cmd.AddCommand(messagesSendCmd(), messagesEditCmd(), messagesDeleteCmd())
	return cmd
}

func messagesSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <chat-id> <text>",
		Short: "Send a message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext()
			defer cancel()

			chatID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("bad chat id %q", args[0])
			}
			msg, err := appCtx.Mutations.SendMessage(ctx, chatID, args[1])
			if err != nil {
				return err
			}
			fmt.Printf("sent message %d\n", msg.ID)
			return nil
		},
	}
}

func messagesEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <chat-id> <message-id> <text>",
		Short: "Edit one of your messages",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext()
			defer cancel()

			chatID, messageID, err := chatAndMessageIDs(args)
			if err != nil {
				return err
			}
			if err := checkAuthor(ctx, chatID, messageID); err != nil {
				return err
			}
			msg, err := appCtx.Mutations.EditMessage(ctx, chatID, messageID, args[2])
			if err != nil {
				return err
			}
			fmt.Printf("edited message %d\n", msg.ID)
			return nil
		},
	}
}

func messagesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <chat-id> <message-id>",
		Short: "Delete one of your messages",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext()
			defer cancel()

			chatID, messageID, err := chatAndMessageIDs(args)
			if err != nil {
				return err
			}
			if err := checkAuthor(ctx, chatID, messageID); err != nil {
				return err
			}
			if err := appCtx.Mutations.DeleteMessage(ctx, chatID, messageID); err != nil {
				return err
			}
			fmt.Printf("deleted message %d\n", messageID)
			return nil
		},
	}
}

func chatAndMessageIDs(args []string) (chatID, messageID int, err error) {
	chatID, err = strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad chat id %q", args[0])
	}
	messageID, err = strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("bad message id %q", args[1])
	}
	return chatID, messageID, nil
}

// checkAuthor gates message edits locally; the server re-checks regardless.
func checkAuthor(ctx context.Context, chatID, messageID int) error {
	me, err := currentIdentity(ctx)
	if err != nil {
		return err
	}
	snap, err := await(appCtx.Queries.Messages(ctx, chatID))
	if err != nil {
		return err
	}
	for _, m := range snap.Value.(domain.MessageList).Messages {
		if m.ID == messageID {
			if !permission.CanEditMessage(me, m) {
				return fmt.Errorf("message %d belongs to %s", messageID, m.User.Username)
			}
			return nil
		}
	}
	return fmt.Errorf("no message %d in chat %d", messageID, chatID)
}
