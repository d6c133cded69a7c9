package service

import (
	"giveaway-settlement/internal/common/errors"
)

// Typed rejections of the join preconditions.

func errCreatorCannotJoin() *errors.AppError {
	return errors.New(errors.ErrCodeCreatorCannotJoin, "You cannot join your own giveaway")
}

func errGiveawayNotActive() *errors.AppError {
	return errors.New(errors.ErrCodeGiveawayNotActive, "This giveaway is not accepting participants")
}

func errGiveawayFull() *errors.AppError {
	return errors.New(errors.ErrCodeGiveawayFull, "This giveaway has reached its participant limit")
}

func errWrongPassword() *errors.AppError {
	return errors.New(errors.ErrCodeWrongPassword, "Wrong giveaway password")
}

func errDuplicateAccount() *errors.AppError {
	return errors.New(errors.ErrCodeDuplicateParticipant, "This account number has already joined the giveaway")
}

func errInvalidBankAccount(cause error) *errors.AppError {
	return errors.Wrap(cause, errors.ErrCodeInvalidBankAccount, "Could not validate the bank account")
}
