package hardware

import (
	"github.com/tom1484/cmg-10m-thermal/internal/errors"
)

const (
	// Lifecycle errors
	ErrNotOpen     = errors.ErrorCode("board_not_open")
	ErrOpenFailed  = errors.ErrorCode("board_open_failed")
	ErrCloseFailed = errors.ErrorCode("board_close_failed")
	ErrListFailed  = errors.ErrorCode("board_list_failed")

	// Attribute errors
	ErrSerialFailed    = errors.ErrorCode("board_serial_failed")
	ErrCalDateFailed   = errors.ErrorCode("board_cal_date_failed")
	ErrCalRead         = errors.ErrorCode("channel_cal_read_failed")
	ErrCalWrite        = errors.ErrorCode("channel_cal_write_failed")
	ErrIntervalRead    = errors.ErrorCode("board_interval_read_failed")
	ErrIntervalWrite   = errors.ErrorCode("board_interval_write_failed")
	ErrTCTypeWrite     = errors.ErrorCode("channel_tc_type_write_failed")
	ErrTCTypeNotSet    = errors.ErrorCode("channel_tc_type_not_set")
	ErrChannelDisabled = errors.ErrorCode("channel_disabled")

	// Read errors
	ErrTemperatureRead = errors.ErrorCode("channel_temperature_read_failed")
	ErrADCRead         = errors.ErrorCode("channel_adc_read_failed")
	ErrCJCRead         = errors.ErrorCode("channel_cjc_read_failed")
)

// ValidateAddress reports whether address is within the hardware family bound.
func ValidateAddress(address uint8) error {
	if address >= MaxBoards {
		return errors.New().WithData(errors.ErrInvalidAddress, address)
	}

	return nil
}

// ValidateChannel reports whether channel is within the per-board bound.
func ValidateChannel(channel uint8) error {
	if channel >= NumChannels {
		return errors.New().WithData(errors.ErrInvalidChannel, channel)
	}

	return nil
}
