package cli

func regCommands() {
	//Chain
	chainCmd.AddCommand(chain_verifyCmd)
	chainCmd.AddCommand(chain_blockCmd)

	//Archive
	archiveCmd.AddCommand(archive_dumpCmd)

	//Root
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(payCmd)
	rootCmd.AddCommand(txsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(chainCmd)
	rootCmd.AddCommand(archiveCmd)
}
