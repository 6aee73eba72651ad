//go:build daqhats

package hardware

/*
#cgo LDFLAGS: -ldaqhats
#include <stdlib.h>
#include <daqhats/daqhats.h>
*/
import "C"

import (
	"time"

	"github.com/tom1484/cmg-10m-thermal/internal/errors"
	"github.com/tom1484/cmg-10m-thermal/internal/logger"
)

// daqhats wraps the vendor library. Builds only with the daqhats tag on a
// host with the MCC daqhats package installed.
type daqhats struct {
	log logger.Logger
}

// New returns the Service backed by the vendor daqhats library.
func New(log logger.Logger) (Service, error) {
	return &daqhats{log: log}, nil
}

func (d *daqhats) Open(address uint8) error {
	if err := ValidateAddress(address); err != nil {
		return err
	}
	if C.mcc134_open(C.uint8_t(address)) != C.RESULT_SUCCESS {
		return errors.New().WithData(ErrOpenFailed, address)
	}

	return nil
}

func (d *daqhats) Close(address uint8) error {
	if err := ValidateAddress(address); err != nil {
		return err
	}
	if C.mcc134_close(C.uint8_t(address)) != C.RESULT_SUCCESS {
		return errors.New().WithData(ErrCloseFailed, address)
	}

	return nil
}

func (d *daqhats) IsOpen(address uint8) bool {
	if address >= MaxBoards {
		return false
	}

	return C.mcc134_is_open(C.uint8_t(address)) != 0
}

func (d *daqhats) ListBoards() ([]BoardDesc, error) {
	count := int(C.hat_list(C.HAT_ID_MCC_134, nil))
	if count <= 0 {
		return nil, nil
	}

	infos := make([]C.struct_HatInfo, count)
	C.hat_list(C.HAT_ID_MCC_134, &infos[0])

	descs := make([]BoardDesc, 0, count)
	for _, info := range infos {
		descs = append(descs, BoardDesc{
			Address:     uint8(info.address),
			ID:          "MCC 134",
			ProductName: C.GoString(&info.product_name[0]),
		})
	}

	return descs, nil
}

func (d *daqhats) Serial(address uint8) (string, error) {
	buf := make([]C.char, 16)
	if C.mcc134_serial(C.uint8_t(address), &buf[0]) != C.RESULT_SUCCESS {
		return "", errors.New().WithData(ErrSerialFailed, address)
	}

	return C.GoString(&buf[0]), nil
}

func (d *daqhats) CalibrationDate(address uint8) (string, error) {
	buf := make([]C.char, 16)
	if C.mcc134_calibration_date(C.uint8_t(address), &buf[0]) != C.RESULT_SUCCESS {
		return "", errors.New().WithData(ErrCalDateFailed, address)
	}

	return C.GoString(&buf[0]), nil
}

func (d *daqhats) CalibrationCoeffs(address, channel uint8) (Calibration, error) {
	if err := ValidateChannel(channel); err != nil {
		return Calibration{}, err
	}

	var slope, offset C.double
	ret := C.mcc134_calibration_coefficient_read(
		C.uint8_t(address), C.uint8_t(channel), &slope, &offset)
	if ret != C.RESULT_SUCCESS {
		return Calibration{}, errors.New().WithData(ErrCalRead, channel)
	}

	return Calibration{Slope: float64(slope), Offset: float64(offset)}, nil
}

func (d *daqhats) UpdateInterval(address uint8) (uint8, error) {
	var interval C.uint8_t
	if C.mcc134_update_interval_read(C.uint8_t(address), &interval) != C.RESULT_SUCCESS {
		return 0, errors.New().WithData(ErrIntervalRead, address)
	}

	return uint8(interval), nil
}

func (d *daqhats) SetCalibrationCoeffs(address, channel uint8, cal Calibration) error {
	if err := ValidateChannel(channel); err != nil {
		return err
	}

	ret := C.mcc134_calibration_coefficient_write(
		C.uint8_t(address), C.uint8_t(channel), C.double(cal.Slope), C.double(cal.Offset))
	if ret != C.RESULT_SUCCESS {
		return errors.New().WithData(ErrCalWrite, channel)
	}

	return nil
}

func (d *daqhats) SetUpdateInterval(address uint8, interval uint8) error {
	if interval < 1 {
		return errors.New().WithData(ErrIntervalWrite, interval)
	}
	if C.mcc134_update_interval_write(C.uint8_t(address), C.uint8_t(interval)) != C.RESULT_SUCCESS {
		return errors.New().WithData(ErrIntervalWrite, address)
	}

	return nil
}

func (d *daqhats) SetTCType(address, channel uint8, tc TCType) error {
	if err := ValidateChannel(channel); err != nil {
		return err
	}

	// Firmware encodes a disabled channel as 0xFF, not as the next type.
	value := C.uint8_t(tc)
	if tc == TCDisabled {
		value = C.TC_DISABLED
	}

	if C.mcc134_tc_type_write(C.uint8_t(address), C.uint8_t(channel), value) != C.RESULT_SUCCESS {
		return errors.New().WithData(ErrTCTypeWrite, channel)
	}

	return nil
}

func (d *daqhats) ReadTemperature(address, channel uint8) (float64, error) {
	if err := ValidateChannel(channel); err != nil {
		return 0, err
	}

	var value C.double
	if C.mcc134_t_in_read(C.uint8_t(address), C.uint8_t(channel), &value) != C.RESULT_SUCCESS {
		return 0, errors.New().WithData(ErrTemperatureRead, channel)
	}

	return float64(value), nil
}

func (d *daqhats) ReadADC(address, channel uint8) (float64, error) {
	if err := ValidateChannel(channel); err != nil {
		return 0, err
	}

	var value C.double
	ret := C.mcc134_a_in_read(C.uint8_t(address), C.uint8_t(channel), C.OPTS_DEFAULT, &value)
	if ret != C.RESULT_SUCCESS {
		return 0, errors.New().WithData(ErrADCRead, channel)
	}

	return float64(value), nil
}

func (d *daqhats) ReadCJC(address, channel uint8) (float64, error) {
	if err := ValidateChannel(channel); err != nil {
		return 0, err
	}

	var value C.double
	if C.mcc134_cjc_read(C.uint8_t(address), C.uint8_t(channel), &value) != C.RESULT_SUCCESS {
		return 0, errors.New().WithData(ErrCJCRead, channel)
	}

	return float64(value), nil
}

func (d *daqhats) WaitForReadings() {
	// The MCC 134 refreshes readings once per update interval; give the
	// first conversion after a TC type change time to complete.
	time.Sleep(1100 * time.Millisecond)
}
