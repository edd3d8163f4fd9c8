package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hirarag/internal/usecase"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync watermarks, file counts and index state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	st := usecase.BuildStatus(app.store, app.index, app.criteria)
	if statusJSON {
		return json.NewEncoder(os.Stdout).Encode(st)
	}

	if st.LastSync != nil {
		fmt.Printf("last sync:   %s\n", st.LastSync.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Println("last sync:   never")
	}
	fmt.Printf("files:       %d\n", st.TotalFiles)
	fmt.Printf("index:       %s (%d chunks)\n", st.IndexState, st.IndexedChunks)
	fmt.Printf("protocols:   %d\n", st.Protocols)
	for _, b := range st.Boards {
		sync := "never"
		if b.LastSync != nil {
			sync = b.LastSync.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("  %s (%s): %d files, synced %s\n", b.Name, b.BoardID, b.FileCount, sync)
	}
	return nil
}
