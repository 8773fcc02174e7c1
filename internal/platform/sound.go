package platform

import "fmt"

// PlaySound plays the system completion chime without waiting for it to end.
func PlaySound() error {
	command, err := soundCommand()
	if err != nil {
		return err
	}
	if err := command.Start(); err != nil {
		return fmt.Errorf("play sound: %w", err)
	}
	go func() {
		_ = command.Wait()
	}()
	return nil
}
